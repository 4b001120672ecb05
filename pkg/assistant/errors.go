package assistant

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UpstreamError is returned when the model provider answers with a non-2xx
// status or cannot be reached
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai: %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status to report to API callers
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusBadGateway
	}
	return e.StatusCode
}

func newUpstreamError(statusCode int, body []byte) *UpstreamError {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	msg := http.StatusText(statusCode)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		msg = payload.Error.Message
	}
	return &UpstreamError{StatusCode: statusCode, Message: msg}
}
