package messagelog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/model"
)

// Lookup finds a previously seen message
type Lookup = interceptor.Lookup

// Chain asks each lookup in order, returning the first record found
type Chain []Lookup

// Message satisfies Lookup. If no lookup has the record, the first lookup failure is
// returned, otherwise model.ErrMessageNotFound
func (c Chain) Message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error) {
	logger := model.NewLogger(ctx)
	var firstErr error
	for i, l := range c {
		msg, err := l.Message(ctx, channelID, messageID)
		if err == nil && msg != nil {
			return msg, nil
		}
		if err == nil || errors.Is(err, model.ErrMessageNotFound) {
			continue
		}
		logger.Warn().Err(err).Int("lookup", i).Msg("[messagelog] lookup failed")
		if firstErr == nil {
			firstErr = errors.Wrapf(err, "lookup %d", i)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, model.ErrMessageNotFound
}
