package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// Registry errors.
// Callers use errors.Is to tell a fatal authentication failure apart from a
// transient one that only affects the current file.
var (
	// ErrUnauthorized is returned when the registry rejects the credentials.
	ErrUnauthorized = errors.New("registry rejected credentials")

	// ErrUnavailable is returned when a request failed after retries, timed
	// out, could not connect, or returned an unusable response.
	ErrUnavailable = errors.New("registry unavailable")

	// ErrInvalidURL is returned when the registry base URL is not an
	// absolute http or https URL.
	ErrInvalidURL = errors.New("invalid registry URL: expected http(s)://host/path")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not in host:port format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// StatusError is returned when the registry answers with a status the
// client cannot use.
type StatusError struct {
	// Op is the registry operation ("validate" or "submit").
	Op string

	// StatusCode is the HTTP status of the last attempt.
	StatusCode int

	// Attempts is how many requests were sent.
	Attempts int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: registry answered %d %s after %d attempt(s)",
		e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Attempts)
}

// Unwrap maps the status to ErrUnauthorized or ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return ErrUnavailable
}
