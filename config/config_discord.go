package config

import (
	"fmt"
)

// Discord represents config settings for discord
type Discord struct {
	IsEnabled       bool   `toml:"enabled" desc:"Enable Discord"`
	Token           string `toml:"bot_token" desc:"Required. Found at https://discordapp.com/developers/ under your app's bot's section"`
	NotifyChannelID string `toml:"notify_channel_id" desc:"Optional. Failure notifications are also posted to this channel"`
}

// Verify checks if config looks valid
func (c *Discord) Verify() error {
	if !c.IsEnabled {
		return nil
	}
	if c.Token == "" {
		return fmt.Errorf("bot_token must be set")
	}
	return nil
}
