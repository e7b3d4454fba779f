// Package quote renders deleted-message reply templates
package quote

import (
	"regexp"
	"strconv"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/xackery/replyquote/model"
)

// DefaultTemplate is used when no reply template is configured
const DefaultTemplate = `<@{author_id}> [said](https://discord.com/channels/{guild_id}/{channel_id}/{message_id}) <t:{sent_unix}:R>:
> {message}

{reply}`

// DefaultTimeFormat is the strftime pattern used by {sent} when no pattern is given
const DefaultTimeFormat = "%d/%m/%Y %H:%M"

// TimeFormatHelp describes the pattern taken by {sent:format}
const TimeFormatHelp = "{sent:format} takes a strftime pattern, e.g. {sent:%Y-%m-%d %H:%M}. Tokens such as dd/MM/yyyy are not patterns and print as is"

// Variables lists every token a template may use
const Variables = "{sent:format} {sent_unix} {author_id} {author_username} {message_id} {channel_id} {guild_id} {message} {reply}"

var tokenPattern = regexp.MustCompile(`{(\w+)(?::([^}]+))?}`)

// TimeFormatter formats t using pattern
type TimeFormatter func(t time.Time, pattern string) string

// GuildResolver finds the guild a channel belongs to
type GuildResolver interface {
	GuildID(channelID string) string
}

// Renderer renders reply templates
type Renderer struct {
	// Format is used for {sent}. If nil, a fixed default rendering is used
	Format TimeFormatter
	// Guilds is consulted when a record has no guild id. Optional
	Guilds GuildResolver
	// Location is the zone {sent} is shown in, defaults to local time
	Location *time.Location
}

// NewRenderer returns a renderer formatting timestamps with strftime patterns
func NewRenderer(guilds GuildResolver) *Renderer {
	return &Renderer{
		Format: StrftimeFormat,
		Guilds: guilds,
	}
}

// StrftimeFormat is a TimeFormatter using strftime patterns
func StrftimeFormat(t time.Time, pattern string) string {
	return strftime.Format(pattern, t)
}

// Render substitutes every known token in tmpl. Unknown tokens are left as is
func (r *Renderer) Render(tmpl string, msg *model.MessageRecord, reply string) string {
	if msg == nil {
		msg = &model.MessageRecord{}
	}
	return tokenPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		parts := tokenPattern.FindStringSubmatch(match)
		key, arg := parts[1], parts[2]
		switch key {
		case "sent":
			return r.formatSent(msg.Timestamp, arg)
		case "sent_unix":
			return strconv.FormatInt(msg.Timestamp.Unix(), 10)
		case "author_id":
			return msg.AuthorID
		case "author_username":
			return msg.AuthorUsername
		case "message_id":
			return msg.ID
		case "channel_id":
			return msg.ChannelID
		case "guild_id":
			return r.guildID(msg)
		case "message":
			return msg.Content
		case "reply":
			return reply
		}
		return match
	})
}

func (r *Renderer) formatSent(sent time.Time, pattern string) string {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	sent = sent.In(loc)
	if r.Format == nil {
		return sent.Format(time.RFC1123)
	}
	if pattern == "" {
		pattern = DefaultTimeFormat
	}
	return r.Format(sent, pattern)
}

func (r *Renderer) guildID(msg *model.MessageRecord) string {
	if msg.GuildID != "" {
		return msg.GuildID
	}
	if r.Guilds == nil {
		return ""
	}
	return r.Guilds.GuildID(msg.ChannelID)
}

// Render renders tmpl with a strftime renderer and no guild resolution
func Render(tmpl string, msg *model.MessageRecord, reply string) string {
	return NewRenderer(nil).Render(tmpl, msg, reply)
}
