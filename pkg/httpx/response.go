package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope is the uniform response body for every endpoint. Success payloads
// ride in Data, validation detail rides in Errors.
type Envelope struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}

const (
	// StatusSuccess marks envelopes for 2xx responses.
	StatusSuccess = "success"
	// StatusError marks envelopes for anything else.
	StatusError = "error"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes a success envelope with an optional data payload.
func Success(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{
		Status:    StatusSuccess,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// Error writes an error envelope. Optional detail strings land in Errors.
func Error(w http.ResponseWriter, code int, message string, errs ...string) {
	WriteJSON(w, code, Envelope{
		Status:    StatusError,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Errors:    errs,
	})
}

// ErrorData writes an error envelope carrying structured data, e.g. the
// lock_until timestamp on lockout responses.
func ErrorData(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{
		Status:    StatusError,
		Message:   message,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
