// Package api provides the HTTP client for the Filebox file-storage
// service. It owns request construction (credential attachment, request
// IDs, content types), response normalization into typed results, and the
// single self-healing reaction to authentication failure: a 401 clears
// the local session exactly once so subsequent calls fail fast instead of
// repeating doomed authenticated requests.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors classifying every failure the client can surface.
// Use errors.Is(err, api.ErrForbidden) to check.
var (
	// ErrValidation marks a local, pre-network input problem. No request
	// was issued.
	ErrValidation = errors.New("api: invalid input")

	// ErrNetwork marks a transport failure with no HTTP response at all.
	// Never retried by this layer; retry policy belongs to the caller.
	ErrNetwork = errors.New("api: network failure")

	// ErrUnauthenticated marks a 401. The local session has already been
	// cleared by the time the caller sees this.
	ErrUnauthenticated = errors.New("api: unauthenticated")

	// ErrForbidden marks a 403. The session is left untouched.
	ErrForbidden = errors.New("api: forbidden")

	// ErrRequestFailed marks any other non-2xx response.
	ErrRequestFailed = errors.New("api: request failed")
)

// Default messages used when the server response carries none.
const (
	defaultFailureMessage   = "request failed"
	defaultForbiddenMessage = "permission denied"
	defaultUnauthMessage    = "session expired, log in again"
)

// APIError wraps a sentinel error with the HTTP status, the request ID the
// client attached, and the server-supplied message (or a default).
type APIError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}

	return fmt.Sprintf("api: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return ErrRequestFailed
	}
}

// defaultMessage returns the fallback message for a status code.
func defaultMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return defaultUnauthMessage
	case http.StatusForbidden:
		return defaultForbiddenMessage
	default:
		return defaultFailureMessage
	}
}

// serverMessage extracts the "message" field from an error response body.
// A body that is not valid JSON falls back to the status default rather
// than raising a secondary parse error.
func serverMessage(body []byte, code int) string {
	var parsed struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}

	return defaultMessage(code)
}
