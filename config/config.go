package config

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/quote"
	"github.com/xackery/replyquote/tlog"
)

// DefaultPath is where the config file is read from when no path is given
const DefaultPath = "replyquote.conf"

// ErrNewConfig is returned when a config file did not exist and a default one was written
var ErrNewConfig = errors.New("a new config file was created")

// Config represents a configuration parse
type Config struct {
	Debug         bool       `toml:"debug" desc:"Enable debug logging"`
	ReplyTemplate string     `toml:"reply_template" desc:"Template used when replying to a deleted message"`
	Discord       Discord    `toml:"discord"`
	MessageLog    MessageLog `toml:"message_log"`
	Nats          Nats       `toml:"nats"`
	API           API        `toml:"api"`
}

// NewConfig loads the config at path, creating a default one if it does not exist.
// When a default is written, ErrNewConfig is returned
func NewConfig(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	fi, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "config info")
		}
		err = os.WriteFile(path, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, errors.Wrapf(err, "create %s", path)
		}
		return nil, ErrNewConfig
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory, should be a file", path)
	}
	return Load(path)
}

// Load decodes and verifies the config at path
func Load(path string) (*Config, error) {
	cfg := &Config{}
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	err = cfg.Verify()
	if err != nil {
		return nil, errors.Wrap(err, "verify")
	}
	tlog.SetDebug(cfg.Debug)
	return cfg, nil
}

// Verify checks if config looks valid, applying defaults
func (c *Config) Verify() error {
	err := c.Discord.Verify()
	if err != nil {
		return errors.Wrap(err, "discord")
	}
	err = c.MessageLog.Verify()
	if err != nil {
		return errors.Wrap(err, "message_log")
	}
	err = c.Nats.Verify()
	if err != nil {
		return errors.Wrap(err, "nats")
	}
	err = c.API.Verify()
	if err != nil {
		return errors.Wrap(err, "api")
	}
	return nil
}

// Template returns the reply template, or the default when unset
func (c *Config) Template() string {
	if c.ReplyTemplate == "" {
		return quote.DefaultTemplate
	}
	return c.ReplyTemplate
}
