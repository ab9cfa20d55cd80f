package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/travelers/internal/shared"
)

var (
	// ErrUnauthenticated is the explicit "no session" outcome.
	ErrUnauthenticated = errors.New("no active session")
	// ErrTransient covers failures that say nothing about the session: the backend could not be reached.
	ErrTransient = errors.New("backend temporarily unavailable")
)

// endpointKind selects how a non-2xx status is classified.
type endpointKind int

const (
	sessionEndpoint endpointKind = iota
	actionEndpoint
	plainEndpoint
)

// StatusError is a non-2xx backend response. It unwraps to its classification sentinel.
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: status %d: %s", e.Err, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: status %d", e.Err, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.Err }

// IsTransient reports whether err leaves the session state undetermined.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsUnauthenticated reports whether err is an explicit "no session" outcome.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// StatusCode extracts the backend status from err, or 0 when err is not a [StatusError].
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func classify(resp *APIResponse, kind endpointKind) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	se := &StatusError{StatusCode: code, Message: resp.Message()}
	switch {
	case code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout:
		se.Err = ErrTransient
	case kind == sessionEndpoint && (code == http.StatusUnauthorized || code == http.StatusForbidden || code == http.StatusNotFound):
		se.Err = ErrUnauthenticated
	case kind == actionEndpoint && code >= 400 && code < 500:
		se.Err = shared.ErrAuthFailed
	default:
		se.Err = shared.ErrAPIRequest
	}
	return se
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Cookies parses the Set-Cookie headers of the response.
func (r *APIResponse) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.Headers}).Cookies()
}

// Message returns the backend's "message" field when the body is a JSON object carrying one.
func (r *APIResponse) Message() string {
	if m, ok := r.JSONData.(map[string]any); ok {
		if msg, ok := m["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Decode unmarshals the body into v.
func (r *APIResponse) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
