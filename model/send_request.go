package model

import (
	"github.com/bwmarrin/discordgo"
)

// SendRequest wraps the arguments of an outgoing send
type SendRequest struct {
	// ChannelID is the channel the message is sent to
	ChannelID string
	Content   Content
	// Options is optional, and may carry a reply reference
	Options *SendOptions
}

// Content is either plain text, or a structured payload when Payload is set
type Content struct {
	Text    string
	Payload *Payload
}

// Payload is structured message content
type Payload struct {
	Content         string                            `json:"content"`
	TTS             bool                              `json:"tts,omitempty"`
	Nonce           string                            `json:"nonce,omitempty"`
	Embeds          []*discordgo.MessageEmbed         `json:"embeds,omitempty"`
	AllowedMentions *discordgo.MessageAllowedMentions `json:"allowed_mentions,omitempty"`
	StickerIDs      []string                          `json:"sticker_ids,omitempty"`
}

// SendOptions are extra send settings
type SendOptions struct {
	MessageReference *MessageReference `json:"message_reference,omitempty"`
	// Silent suppresses push notifications for the sent message
	Silent bool `json:"silent,omitempty"`
}

// MessageReference points to a message being replied to
type MessageReference struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id,omitempty"`
	GuildID   string `json:"guild_id,omitempty"`
}

// NewTextRequest creates a plain text send request
func NewTextRequest(channelID string, text string) *SendRequest {
	return &SendRequest{
		ChannelID: channelID,
		Content:   Content{Text: text},
	}
}

// Body returns the text of content, regardless of form
func (c Content) Body() string {
	if c.Payload != nil {
		return c.Payload.Content
	}
	return c.Text
}

// IsPayload returns true if content is a structured payload
func (c Content) IsPayload() bool {
	return c.Payload != nil
}

// Reply returns the reply reference of the request, if any
func (r *SendRequest) Reply() (*MessageReference, bool) {
	if r == nil || r.Options == nil || r.Options.MessageReference == nil {
		return nil, false
	}
	return r.Options.MessageReference, true
}

// Clone returns a copy of r with its payload and options copied, so either can be changed
// without touching r. Slices inside the payload are shared
func (r *SendRequest) Clone() *SendRequest {
	out := *r
	if r.Content.Payload != nil {
		payload := *r.Content.Payload
		out.Content.Payload = &payload
	}
	if r.Options != nil {
		opts := *r.Options
		out.Options = &opts
	}
	return &out
}
