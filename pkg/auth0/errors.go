package auth0

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// UpstreamError is returned when Auth0 answers with a non-2xx status
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("auth0: %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status to report to API callers
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusBadGateway
	}
	return e.StatusCode
}

// newUpstreamError extracts the most descriptive message Auth0 put in body.
// The authentication API uses error/error_description and the management
// API uses error/message.
func newUpstreamError(statusCode int, body []byte) *UpstreamError {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	msg := http.StatusText(statusCode)
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			msg = payload.ErrorDescription
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &UpstreamError{StatusCode: statusCode, Message: msg}
}
