// Package notify delivers user facing notifications
package notify

import (
	"context"

	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/model"
)

// Notifier shows a message to the user
type Notifier = interceptor.Notifier

// Log writes notifications to the log
type Log struct{}

// Notify satisfies Notifier
func (Log) Notify(ctx context.Context, message string, severity model.Severity) {
	logger := model.NewLogger(ctx)
	switch severity {
	case model.SeverityFailure:
		logger.Warn().Str("severity", severity.String()).Msgf("[notify] %s", message)
	default:
		logger.Info().Str("severity", severity.String()).Msgf("[notify] %s", message)
	}
}

// Multi fans a notification out to every notifier
type Multi []Notifier

// Notify satisfies Notifier
func (m Multi) Notify(ctx context.Context, message string, severity model.Severity) {
	for _, n := range m {
		if n == nil {
			continue
		}
		n.Notify(ctx, message, severity)
	}
}
