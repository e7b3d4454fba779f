package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/xackery/replyquote/model"
)

// Record converts a discord message to a message record
func Record(m *discordgo.Message) model.MessageRecord {
	rec := model.MessageRecord{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
	if m.Author != nil {
		rec.AuthorID = m.Author.ID
		rec.AuthorUsername = m.Author.Username
	}
	return rec
}

func (t *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if t.cache == nil || m.Message == nil {
		return
	}
	t.cache.Put(Record(m.Message))
}

func (t *Discord) onMessageUpdate(s *discordgo.Session, m *discordgo.MessageUpdate) {
	if t.cache == nil || m.Message == nil {
		return
	}
	// updates may be partial, such as embed resolution with no content
	ok := t.cache.Update(m.ChannelID, m.ID, func(rec *model.MessageRecord) {
		if m.Content != "" {
			rec.Content = m.Content
		}
	})
	if ok || m.Author == nil {
		return
	}
	t.cache.Put(Record(m.Message))
}

func (t *Discord) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if t.cache == nil || m.Message == nil {
		return
	}
	if t.cache.MarkDeleted(m.ChannelID, m.ID) {
		log.Debug().Str("channel_id", m.ChannelID).Str("message_id", m.ID).Msg("[discord] message deleted")
		return
	}
	if m.BeforeDelete == nil {
		return
	}
	rec := Record(m.BeforeDelete)
	rec.Deleted = true
	t.cache.Put(rec)
}

func (t *Discord) onMessageDeleteBulk(s *discordgo.Session, m *discordgo.MessageDeleteBulk) {
	if t.cache == nil {
		return
	}
	for _, id := range m.Messages {
		t.cache.MarkDeleted(m.ChannelID, id)
	}
	log.Debug().Str("channel_id", m.ChannelID).Int("count", len(m.Messages)).Msg("[discord] messages bulk deleted")
}
