package model

import (
	"time"
)

// MessageRecord is a previously seen message, as retained by a message logger
type MessageRecord struct {
	ID             string    `json:"id"`
	ChannelID      string    `json:"channel_id"`
	GuildID        string    `json:"guild_id,omitempty"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	// Deleted is set once the message is gone from the live channel
	Deleted bool `json:"deleted"`
}
