package messagelog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hpcloud/tail"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/tlog"
)

const (
	// EventCreate records a new message
	EventCreate = "create"
	// EventUpdate replaces the content of a message
	EventUpdate = "update"
	// EventDelete marks a message deleted
	EventDelete = "delete"
)

// Event is one line of a message logger's event file
type Event struct {
	Type    string              `json:"type"`
	Message model.MessageRecord `json:"message"`
}

// Tail follows a JSON lines event file written by an external message logger, feeding a cache
type Tail struct {
	path  string
	cache *Cache
	// FromStart replays the whole file instead of only new lines
	FromStart bool
}

// NewTail creates a new event file follower
func NewTail(path string, cache *Cache) *Tail {
	return &Tail{
		path:      path,
		cache:     cache,
		FromStart: true,
	}
}

// Run follows the event file until ctx is done
func (t *Tail) Run(ctx context.Context) error {
	cfg := tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: tail.DiscardingLogger,
	}
	if !t.FromStart {
		fi, err := os.Stat(t.path)
		if err == nil {
			cfg.Location = &tail.SeekInfo{Offset: fi.Size()}
		}
	}

	tailer, err := tail.TailFile(t.path, cfg)
	if err != nil {
		return errors.Wrap(err, "tail")
	}
	defer func() {
		tlog.Debugf("[messagelog] tail loop exiting for %s", t.path)
		tailer.Stop()
		tailer.Cleanup()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-tailer.Lines:
			if !ok {
				return tailer.Err()
			}
			if line.Err != nil {
				tlog.Warnf("[messagelog] tail %s error: %s", t.path, line.Err)
				continue
			}
			err = t.Apply(line.Text)
			if err != nil {
				tlog.Warnf("[messagelog] skipping line: %s", err)
			}
		}
	}
}

// Apply parses a single event line into the cache. Blank lines are ignored
func (t *Tail) Apply(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	event := Event{}
	err := json.Unmarshal([]byte(line), &event)
	if err != nil {
		return errors.Wrap(err, "unmarshal")
	}
	if event.Message.ID == "" || event.Message.ChannelID == "" {
		return fmt.Errorf("event %s: message id and channel_id required", event.Type)
	}

	switch event.Type {
	case EventCreate:
		t.cache.Put(event.Message)
	case EventUpdate:
		ok := t.cache.Update(event.Message.ChannelID, event.Message.ID, func(rec *model.MessageRecord) {
			rec.Content = event.Message.Content
		})
		if !ok {
			t.cache.Put(event.Message)
		}
	case EventDelete:
		if !t.cache.MarkDeleted(event.Message.ChannelID, event.Message.ID) {
			rec := event.Message
			rec.Deleted = true
			t.cache.Put(rec)
		}
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	return nil
}
