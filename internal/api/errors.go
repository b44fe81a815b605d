package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrSessionExpired indicates the server rejected the bearer token. Callers
// clear the stored token and send the user back to login.
var ErrSessionExpired = errors.New("session expired")

// ErrNotFound indicates the requested resource does not exist; the detail
// view renders an empty-state card for it.
var ErrNotFound = errors.New("not found")

// Error is a transport or server failure with the most specific message the
// response carried. Exception stacks are never surfaced.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// extractMessage pulls the server-provided message out of an error body,
// preferring the error field, then the envelope message, then the HTTP
// status text.
func extractMessage(body []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
