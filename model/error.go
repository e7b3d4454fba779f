package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMessageNotFound is returned by a message lookup when no record exists
var ErrMessageNotFound = errors.New("message not found")

// ErrTargetNotFound is returned when a reply points to a message that cannot be found
type ErrTargetNotFound struct {
	ChannelID string
	MessageID string
}

// Error satisfies the error type interface
func (e ErrTargetNotFound) Error() string {
	return fmt.Sprintf("reply blocked: message %s not found in channel %s", e.MessageID, e.ChannelID)
}

// IsTargetNotFound returns true if err is, or wraps, an ErrTargetNotFound
func IsTargetNotFound(err error) bool {
	var target ErrTargetNotFound
	return errors.As(err, &target)
}
