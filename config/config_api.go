package config

import (
	"fmt"

	"github.com/xackery/replyquote/tlog"
)

// API represents an API listening service
type API struct {
	IsEnabled bool    `toml:"enabled" desc:"Enable API service"`
	Host      string  `toml:"host" desc:"What address and port to bind to (default is 127.0.0.1, so only local traffic can talk to it)"`
	RateLimit float64 `toml:"rate_limit" desc:"Sends allowed per second"`
	Burst     int     `toml:"burst" desc:"Sends allowed in a burst"`
}

// Verify checks if config looks valid
func (c *API) Verify() error {
	if !c.IsEnabled {
		return nil
	}

	if c.Host == "" {
		tlog.Debugf("[api] host was empty, defaulting to 127.0.0.1:9933")
		c.Host = "127.0.0.1:9933"
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	if c.Burst < 1 {
		c.Burst = 10
	}
	return nil
}
