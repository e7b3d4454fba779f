package interceptor

import (
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

type statusCoder interface {
	StatusCode() int
}

type errorCoder interface {
	ErrorCode() int
}

// IsUnknownMessage returns true if err reports that a referenced message does not exist
func IsUnknownMessage(err error) bool {
	if err == nil {
		return false
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
			return true
		}
		if restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return true
		}
	}

	var coder errorCoder
	if errors.As(err, &coder) && coder.ErrorCode() == discordgo.ErrCodeUnknownMessage {
		return true
	}

	var status statusCoder
	if errors.As(err, &status) && status.StatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
