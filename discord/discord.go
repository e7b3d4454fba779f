package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/messagelog"
	"github.com/xackery/replyquote/model"
)

type messageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord represents a discord connection
type Discord struct {
	ctx         context.Context
	cancel      context.CancelFunc
	isConnected bool
	mutex       sync.RWMutex
	config      config.Discord
	conn        *discordgo.Session
	api         messageSender
	cache       *messagelog.Cache
	id          string
	commands    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) (string, error)
	// Template returns the active reply template, shown by the replytemplate command
	Template func() string
}

// New creates a new discord connect. Messages seen on the gateway are recorded into cache
func New(ctx context.Context, config config.Discord, cache *messagelog.Cache) (*Discord, error) {
	ctx, cancel := context.WithCancel(ctx)

	t := &Discord{
		ctx:    ctx,
		cancel: cancel,
		config: config,
		cache:  cache,
	}
	t.commands = map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) (string, error){
		"replytemplate": t.replyTemplate,
	}

	log.Debug().Msg("verifying discord configuration")

	if !config.IsEnabled {
		return t, nil
	}

	if config.Token == "" {
		return nil, fmt.Errorf("bot_token must be set")
	}

	return t, nil
}

// Connect establishes a new connection with Discord
func (t *Discord) Connect(ctx context.Context) error {
	var err error
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if !t.config.IsEnabled {
		log.Debug().Msg("discord is disabled, skipping connect")
		return nil
	}

	log.Info().Msg("discord connecting...")

	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
		t.cancel()
	}
	t.ctx, t.cancel = context.WithCancel(ctx)

	t.conn, err = discordgo.New("Bot " + t.config.Token)
	if err != nil {
		return errors.Wrap(err, "new")
	}

	t.conn.StateEnabled = true
	t.conn.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	t.conn.AddHandler(t.onMessageCreate)
	t.conn.AddHandler(t.onMessageUpdate)
	t.conn.AddHandler(t.onMessageDelete)
	t.conn.AddHandler(t.onMessageDeleteBulk)
	t.conn.AddHandler(t.handleCommand)

	err = t.conn.Open()
	if err != nil {
		t.closeConn()
		return errors.Wrap(err, "open")
	}
	t.api = t.conn

	myUser, err := t.conn.User("@me")
	if err != nil {
		t.closeConn()
		return errors.Wrap(err, "get my username")
	}
	t.id = myUser.ID
	log.Debug().Str("id", t.id).Msg("@me")

	err = t.commandsRegister()
	if err != nil {
		log.Warn().Err(err).Msg("discord register commands")
	}

	t.isConnected = true
	log.Info().Msgf("discord connected successfully as %s", myUser.Username)
	return nil
}

// closeConn drops a session that failed to finish connecting. Caller holds the mutex
func (t *Discord) closeConn() {
	if t.conn == nil {
		return
	}
	err := t.conn.Close()
	if err != nil {
		log.Debug().Err(err).Msg("discord close after failed connect")
	}
	t.conn = nil
	t.api = nil
	t.cancel()
}

// IsConnected returns if a connection is established
func (t *Discord) IsConnected() bool {
	t.mutex.RLock()
	isConnected := t.isConnected
	t.mutex.RUnlock()
	return isConnected
}

// Disconnect stops a previously started connection with Discord.
// If called while a connection is not active, returns nil
func (t *Discord) Disconnect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.config.IsEnabled {
		log.Debug().Msg("discord is disabled, skipping disconnect")
		return nil
	}
	if !t.isConnected {
		log.Debug().Msg("discord is already disconnected, skipping disconnect")
		return nil
	}
	err := t.conn.Close()
	if err != nil {
		log.Warn().Err(err).Msg("discord disconnect")
	}
	t.cancel()
	t.conn = nil
	t.api = nil
	t.isConnected = false
	return nil
}

// Send sends a message to discord
func (t *Discord) Send(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error) {
	t.mutex.RLock()
	api := t.api
	t.mutex.RUnlock()
	if api == nil {
		return nil, fmt.Errorf("discord not connected")
	}

	msg, err := api.ChannelMessageSendComplex(req.ChannelID, MessageSend(req), discordgo.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "send to %s", req.ChannelID)
	}
	log.Debug().Str("channel_id", req.ChannelID).Str("message_id", msg.ID).Msg("[discord] sent")
	return msg, nil
}

// MessageSend converts a request to its discord form
func MessageSend(req *model.SendRequest) *discordgo.MessageSend {
	data := &discordgo.MessageSend{
		Content: req.Content.Body(),
	}
	if p := req.Content.Payload; p != nil {
		data.TTS = p.TTS
		data.Embeds = p.Embeds
		data.AllowedMentions = p.AllowedMentions
		data.StickerIDs = p.StickerIDs
	}
	if req.Options != nil {
		if req.Options.Silent {
			data.Flags |= discordgo.MessageFlagsSuppressNotifications
		}
		if ref := req.Options.MessageReference; ref != nil {
			channelID := ref.ChannelID
			if channelID == "" {
				channelID = req.ChannelID
			}
			data.Reference = &discordgo.MessageReference{
				MessageID: ref.MessageID,
				ChannelID: channelID,
				GuildID:   ref.GuildID,
			}
		}
	}
	return data
}

// GuildID returns the guild a channel belongs to, or an empty string if unknown
func (t *Discord) GuildID(channelID string) string {
	t.mutex.RLock()
	conn := t.conn
	t.mutex.RUnlock()
	if conn == nil {
		return ""
	}
	if conn.State != nil {
		ch, err := conn.State.Channel(channelID)
		if err == nil {
			return ch.GuildID
		}
	}
	ch, err := conn.Channel(channelID)
	if err != nil {
		log.Debug().Err(err).Str("channel_id", channelID).Msg("[discord] guild lookup")
		return ""
	}
	return ch.GuildID
}

// Notify posts a notification to the configured notify channel
func (t *Discord) Notify(ctx context.Context, message string, severity model.Severity) {
	if t.config.NotifyChannelID == "" {
		return
	}
	req := model.NewTextRequest(t.config.NotifyChannelID, fmt.Sprintf("**%s:** %s", severity, message))
	_, err := t.Send(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("[discord] notify")
	}
}
