package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// APIError is a structured error response from the API.
type APIError struct {
	// StatusCode is the HTTP status the server answered with.
	StatusCode int

	// Message is the server's human-readable error message.
	Message string

	// Details holds field-level validation messages, when present.
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, "; "))
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// AccountLockedError is returned when a login is rejected because the
// account is temporarily locked after repeated failures.
type AccountLockedError struct {
	Message string

	// Until is when the lock expires and logins are accepted again.
	Until time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("%s until %s", e.Message, e.Until.Format(time.RFC3339))
}

// parseErrorResponse converts an error response body into a typed error.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == "" {
		// Not an enveloped response, fall back to a generic error.
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
		}
	}

	if resp.StatusCode == http.StatusLocked {
		var lock LockoutData
		if err := json.Unmarshal(env.Data, &lock); err == nil && !lock.LockUntil.IsZero() {
			return &AccountLockedError{Message: env.Message, Until: lock.LockUntil}
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    env.Message,
		Details:    env.Errors,
	}
}
