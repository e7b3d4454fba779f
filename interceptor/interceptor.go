// Package interceptor rewrites replies to deleted messages into quoted text
package interceptor

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/quote"
)

// NotFoundMessage is shown to the user when a reply target cannot be found
const NotFoundMessage = "Cannot reply: Original message not found (potentially deleted)."

// SendFunc sends a message
type SendFunc func(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error)

// Lookup finds previously seen messages.
// It returns model.ErrMessageNotFound when no record exists.
type Lookup interface {
	Message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error)
}

// Notifier shows a message to the user
type Notifier interface {
	Notify(ctx context.Context, message string, severity model.Severity)
}

// Interceptor wraps a SendFunc, quoting replies to deleted messages
type Interceptor struct {
	lookup   Lookup
	notifier Notifier
	template func() string
	renderer *quote.Renderer
}

// New creates a new interceptor. template is called on every send, so edits apply live.
// A nil lookup treats every reply target as missing.
func New(lookup Lookup, notifier Notifier, template func() string, renderer *quote.Renderer) *Interceptor {
	if renderer == nil {
		renderer = quote.NewRenderer(nil)
	}
	if template == nil {
		template = func() string { return quote.DefaultTemplate }
	}
	return &Interceptor{
		lookup:   lookup,
		notifier: notifier,
		template: template,
		renderer: renderer,
	}
}

// Wrap returns a SendFunc that intercepts calls to next
func (i *Interceptor) Wrap(next SendFunc) SendFunc {
	return func(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error) {
		return i.send(ctx, next, req)
	}
}

func (i *Interceptor) send(ctx context.Context, next SendFunc, req *model.SendRequest) (*discordgo.Message, error) {
	logger := model.NewLogger(ctx)
	ref, isReply := req.Reply()
	if isReply {
		msg, err := i.message(ctx, req.ChannelID, ref.MessageID)
		if err != nil {
			if !errors.Is(err, model.ErrMessageNotFound) {
				return nil, errors.Wrap(err, "lookup reply target")
			}
			logger.Debug().Str("channel_id", req.ChannelID).Str("message_id", ref.MessageID).Msg("[interceptor] reply target not found, blocking send")
			if i.notifier != nil {
				i.notifier.Notify(ctx, NotFoundMessage, model.SeverityFailure)
			}
			return nil, model.ErrTargetNotFound{ChannelID: req.ChannelID, MessageID: ref.MessageID}
		}
		if msg.Deleted {
			logger.Debug().Str("channel_id", req.ChannelID).Str("message_id", ref.MessageID).Msg("[interceptor] reply target deleted, sending as quote")
			return next(ctx, i.rewrite(req, msg))
		}
	}

	resp, err := next(ctx, req)
	if err == nil {
		return resp, nil
	}
	if !isReply || !IsUnknownMessage(err) {
		return resp, err
	}

	msg, lookupErr := i.message(ctx, req.ChannelID, ref.MessageID)
	if lookupErr != nil {
		logger.Debug().Err(lookupErr).Str("message_id", ref.MessageID).Msg("[interceptor] unknown message, and no record to quote")
		return resp, err
	}
	logger.Debug().Err(err).Str("message_id", ref.MessageID).Msg("[interceptor] unknown message, retrying as quote")
	return next(ctx, i.rewrite(req, msg))
}

func (i *Interceptor) message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error) {
	if i.lookup == nil {
		return nil, model.ErrMessageNotFound
	}
	msg, err := i.lookup.Message(ctx, channelID, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, model.ErrMessageNotFound
	}
	return msg, nil
}

func (i *Interceptor) rewrite(req *model.SendRequest, msg *model.MessageRecord) *model.SendRequest {
	content := i.renderer.Render(i.template(), msg, req.Content.Body())
	return quote.Rewrite(req, content)
}
