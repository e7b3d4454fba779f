// Package messagelog provides lookups of previously seen messages, including deleted ones
package messagelog

import (
	"container/list"
	"context"
	"sync"

	"github.com/xackery/replyquote/model"
)

// DefaultCacheSize is used when a cache is created with a size below 1
const DefaultCacheSize = 10000

// Cache is a bounded in-memory message log. When full, the least recently written record is evicted
type Cache struct {
	mu      sync.RWMutex
	size    int
	entries map[string]*list.Element
	order   *list.List
}

// NewCache creates a new cache holding up to size records
func NewCache(size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &Cache{
		size:    size,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func key(channelID string, messageID string) string {
	return channelID + "/" + messageID
}

// Put updates or adds a record
func (c *Cache) Put(rec model.MessageRecord) {
	k := key(rec.ChannelID, rec.ID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[k]; ok {
		e.Value = &rec
		c.order.MoveToFront(e)
		return
	}
	c.entries[k] = c.order.PushFront(&rec)
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		old := oldest.Value.(*model.MessageRecord)
		delete(c.entries, key(old.ChannelID, old.ID))
		c.order.Remove(oldest)
	}
}

// Update applies fn to an existing record, returning false if none exists
func (c *Cache) Update(channelID string, messageID string, fn func(rec *model.MessageRecord)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key(channelID, messageID)]
	if !ok {
		return false
	}
	rec := *e.Value.(*model.MessageRecord)
	fn(&rec)
	e.Value = &rec
	return true
}

// MarkDeleted flags a record as deleted, returning false if it is not known
func (c *Cache) MarkDeleted(channelID string, messageID string) bool {
	return c.Update(channelID, messageID, func(rec *model.MessageRecord) {
		rec.Deleted = true
	})
}

// Message returns a copy of a record, or model.ErrMessageNotFound
func (c *Cache) Message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key(channelID, messageID)]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	rec := *e.Value.(*model.MessageRecord)
	return &rec, nil
}

// Len returns how many records are held
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}
