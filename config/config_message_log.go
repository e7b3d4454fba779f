package config

import (
	"fmt"
)

// MessageLog represents where previously seen messages are looked up
type MessageLog struct {
	CacheSize int           `toml:"cache_size" desc:"How many messages seen on the gateway are kept in memory"`
	TailPath  string        `toml:"tail_path" desc:"Optional. JSON lines event file written by a message logger"`
	SQL       MessageLogSQL `toml:"sql" desc:"Optional. Database written by a message logger"`
}

// MessageLogSQL is for a message logger database
type MessageLogSQL struct {
	IsEnabled bool   `toml:"enabled" desc:"Enable database lookups"`
	Driver    string `toml:"driver" desc:"mysql or sqlite"`
	DSN       string `toml:"dsn" desc:"Data source name, e.g. user:pass@tcp(127.0.0.1:3306)/logger"`
	Table     string `toml:"table" desc:"Table holding messages"`
}

// Verify checks if config looks valid
func (c *MessageLog) Verify() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size cannot be negative")
	}
	if c.CacheSize == 0 {
		c.CacheSize = 10000
	}
	if !c.SQL.IsEnabled {
		return nil
	}
	if c.SQL.Driver == "" {
		c.SQL.Driver = "mysql"
	}
	if c.SQL.Driver != "mysql" && c.SQL.Driver != "sqlite" {
		return fmt.Errorf("sql: unsupported driver %q", c.SQL.Driver)
	}
	if c.SQL.DSN == "" {
		return fmt.Errorf("sql: dsn must be set")
	}
	if c.SQL.Table == "" {
		c.SQL.Table = "messages"
	}
	return nil
}
