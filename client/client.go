// Package client wires every replyquote service together
package client

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xackery/replyquote/api"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/discord"
	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/messagelog"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/switchboard"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"
)

// Service is an endpoint that can be connected and disconnected
type Service interface {
	IsConnected() bool
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// Client wraps all services
type Client struct {
	ctx         context.Context
	cancel      context.CancelFunc
	mutex       sync.Mutex
	store       *config.Store
	cache       *messagelog.Cache
	sql         *messagelog.SQLStore
	nats        *nats.Conn
	discord     *discord.Discord
	board       *switchboard.Switchboard
	interceptor *interceptor.Interceptor
	api         *api.API
	patch       *switchboard.Patch
}

// New loads the config at path and creates a new client.
// If no config existed, a default one is written and config.ErrNewConfig is returned
func New(ctx context.Context, path string) (*Client, error) {
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.NewConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, config.NewStore(path, cfg))
}

// NewWithStore creates a new client from an already loaded config
func NewWithStore(ctx context.Context, store *config.Store) (*Client, error) {
	ctx, cancel := context.WithCancel(ctx)
	c, err := build(ctx, store)
	if err != nil {
		cancel()
		return nil, err
	}
	c.ctx = ctx
	c.cancel = cancel
	return c, nil
}

func build(ctx context.Context, store *config.Store) (*Client, error) {
	d := dig.New()

	providers := []interface{}{
		func() context.Context { return ctx },
		func() *config.Store { return store },
		newCache,
		newSQLStore,
		newLookup,
		newNATS,
		newDiscord,
		newNotifier,
		newRenderer,
		newInterceptor,
		newSwitchboard,
		newAPI,
	}
	for _, p := range providers {
		err := d.Provide(p)
		if err != nil {
			return nil, errors.Wrap(err, "provide")
		}
	}

	var c *Client
	err := d.Invoke(func(
		cache *messagelog.Cache,
		sql *messagelog.SQLStore,
		conn *nats.Conn,
		dc *discord.Discord,
		board *switchboard.Switchboard,
		ic *interceptor.Interceptor,
		a *api.API,
	) {
		c = &Client{
			store:       store,
			cache:       cache,
			sql:         sql,
			nats:        conn,
			discord:     dc,
			board:       board,
			interceptor: ic,
			api:         a,
		}
	})
	if err != nil {
		return nil, errors.Wrap(dig.RootCause(err), "build")
	}
	return c, nil
}

// Connect attempts to connect to all enabled services, and starts intercepting sends
func (c *Client) Connect(ctx context.Context) error {
	err := c.discord.Connect(ctx)
	if err != nil {
		return errors.Wrap(err, "discord connect")
	}

	err = c.Install()
	if err != nil {
		return errors.Wrap(err, "install")
	}

	err = c.api.Connect(ctx)
	if err != nil {
		return errors.Wrap(err, "api connect")
	}
	return nil
}

// Install wraps the send operation with the interceptor. Installing twice is a no-op
func (c *Client) Install() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.patch != nil {
		return nil
	}
	patch, err := c.board.Install(switchboard.SendOperation, c.interceptor.Wrap)
	if err != nil {
		return err
	}
	c.patch = patch
	log.Debug().Msg("reply interceptor installed")
	return nil
}

// Uninstall restores the send operation present before Install
func (c *Client) Uninstall() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.patch == nil {
		return
	}
	c.patch.Detach()
	c.patch = nil
	log.Debug().Msg("reply interceptor detached")
}

// Run follows config and message log files until ctx is done or one of them fails
func (c *Client) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(c.store.Watch(ctx), "config watch")
	})
	tailPath := c.store.Config().MessageLog.TailPath
	if tailPath != "" {
		t := messagelog.NewTail(tailPath, c.cache)
		g.Go(func() error {
			return errors.Wrap(t.Run(ctx), "tail")
		})
	}
	return g.Wait()
}

// Send sends a message through the send operation, intercepted if installed
func (c *Client) Send(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error) {
	return c.board.Send(ctx, switchboard.SendOperation, req)
}

// Cache returns the message cache fed by discord and the tail
func (c *Client) Cache() *messagelog.Cache {
	return c.cache
}

// Status reports whether each service is connected
func (c *Client) Status() map[string]bool {
	status := map[string]bool{}
	for name, s := range c.services() {
		status[name] = s.IsConnected()
	}
	return status
}

func (c *Client) services() map[string]Service {
	return map[string]Service{
		"api":     c.api,
		"discord": c.discord,
	}
}

// Disconnect stops all services and restores the send operation
func (c *Client) Disconnect(ctx context.Context) error {
	c.Uninstall()

	var err error
	for name, s := range c.services() {
		err = s.Disconnect(ctx)
		if err != nil {
			log.Warn().Err(err).Msgf("%s disconnect", name)
		}
	}

	if c.nats != nil {
		c.nats.Close()
	}
	if c.sql != nil {
		err = c.sql.Close()
		if err != nil {
			log.Warn().Err(err).Msg("sql close")
		}
	}
	c.cancel()
	return nil
}
