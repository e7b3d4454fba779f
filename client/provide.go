package client

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/api"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/discord"
	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/messagelog"
	"github.com/xackery/replyquote/notify"
	"github.com/xackery/replyquote/quote"
	"github.com/xackery/replyquote/switchboard"
)

func newCache(store *config.Store) *messagelog.Cache {
	return messagelog.NewCache(store.Config().MessageLog.CacheSize)
}

// newSQLStore returns nil when sql lookups are disabled
func newSQLStore(store *config.Store) (*messagelog.SQLStore, error) {
	cfg := store.Config().MessageLog.SQL
	if !cfg.IsEnabled {
		return nil, nil
	}
	s, err := messagelog.OpenSQL(cfg.Driver, cfg.DSN, cfg.Table)
	if err != nil {
		return nil, errors.Wrap(err, "sql")
	}
	return s, nil
}

func newLookup(cache *messagelog.Cache, sql *messagelog.SQLStore) interceptor.Lookup {
	chain := messagelog.Chain{cache}
	if sql != nil {
		chain = append(chain, sql)
	}
	return chain
}

// newNATS returns nil when nats is disabled
func newNATS(store *config.Store) (*nats.Conn, error) {
	cfg := store.Config().Nats
	if !cfg.IsEnabled {
		return nil, nil
	}
	return notify.ConnectNATS(cfg.Host)
}

func newDiscord(ctx context.Context, store *config.Store, cache *messagelog.Cache) (*discord.Discord, error) {
	d, err := discord.New(ctx, store.Config().Discord, cache)
	if err != nil {
		return nil, errors.Wrap(err, "discord")
	}
	d.Template = store.ReplyTemplate
	return d, nil
}

func newNotifier(store *config.Store, d *discord.Discord, conn *nats.Conn) interceptor.Notifier {
	n := notify.Multi{notify.Log{}, d}
	if conn != nil {
		n = append(n, notify.NewNATS(conn, store.Config().Nats.Subject))
	}
	return n
}

func newRenderer(d *discord.Discord) *quote.Renderer {
	return quote.NewRenderer(d)
}

func newInterceptor(store *config.Store, lookup interceptor.Lookup, notifier interceptor.Notifier, renderer *quote.Renderer) *interceptor.Interceptor {
	return interceptor.New(lookup, notifier, store.ReplyTemplate, renderer)
}

func newSwitchboard(d *discord.Discord) *switchboard.Switchboard {
	board := switchboard.New()
	board.Register(switchboard.SendOperation, d.Send)
	return board
}

func newAPI(ctx context.Context, store *config.Store, board *switchboard.Switchboard, renderer *quote.Renderer) (*api.API, error) {
	a, err := api.New(ctx, store.Config().API, board, store.ReplyTemplate, renderer)
	if err != nil {
		return nil, errors.Wrap(err, "api")
	}
	return a, nil
}
