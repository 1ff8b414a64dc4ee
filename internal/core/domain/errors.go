package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork      = errors.New("network error")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrValidation   = errors.New("validation failed")
	ErrNotSignedIn  = errors.New("not signed in")
	ErrEmptySession = errors.New("backend returned an incomplete session")
)

// NetworkError reports a transport failure: no HTTP response was obtained.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return "Unable to connect to the help desk server. Please check your connection."
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// HTTPError reports a non-2xx response. Message is the backend's own
// "error" field when present, otherwise a status-derived default.
type HTTPError struct {
	Status   int
	Message  string
	Endpoint string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap lets callers test for the statuses with app-wide meaning using
// errors.Is(err, ErrUnauthorized) and friends.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	}
	return nil
}

// NewHTTPError builds an HTTPError, preferring backendMessage over the
// default message for status.
func NewHTTPError(status int, endpoint, backendMessage string) *HTTPError {
	msg := backendMessage
	if msg == "" {
		msg = DefaultHTTPMessage(status, endpoint)
	}
	return &HTTPError{Status: status, Message: msg, Endpoint: endpoint}
}

// DefaultHTTPMessage is the user-facing message for a status when the
// backend did not supply one.
func DefaultHTTPMessage(status int, endpoint string) string {
	switch status {
	case http.StatusUnauthorized:
		return "Authentication failed. Please log in again."
	case http.StatusForbidden:
		return "Access denied. You do not have permission to perform this action."
	case http.StatusNotFound:
		return fmt.Sprintf("API endpoint not found: %s", endpoint)
	case http.StatusInternalServerError:
		return "Internal server error. Please try again later."
	}
	return fmt.Sprintf("Request failed with status %d", status)
}

// ValidationError collects client-side form check failures.
type ValidationError struct {
	Fields map[string]string
	Msg    string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsUnauthorized reports whether err means the session must be re-established.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
