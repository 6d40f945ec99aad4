package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Common errors.
var (
	// ErrNoRefreshToken is returned when a refresh is attempted without a
	// stored refresh token.
	ErrNoRefreshToken = errors.New("spotify: no refresh token available")

	// ErrNotAuthenticated is returned when a request is attempted before
	// any token has been set.
	ErrNotAuthenticated = errors.New("spotify: not authenticated")

	// ErrRetriesExhausted wraps the last error after the retry budget for
	// a transient failure has been spent.
	ErrRetriesExhausted = errors.New("spotify: retries exhausted")
)

// AuthError is a terminal authentication failure: the token endpoint
// rejected a grant, or a request still failed after the one allowed
// refresh-and-retry. It is never retried.
type AuthError struct {
	Op     string // "client_credentials", "exchange_code", "refresh", "request"
	Status int    // HTTP status from the upstream, 0 if not applicable
	Detail string
	Err    error // underlying cause, may be nil
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("spotify: auth failed during %s (status %d): %s", e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("spotify: auth failed during %s: %s", e.Op, e.Detail)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response from a resource endpoint.
type StatusError struct {
	Status int
	Path   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify: %s returned status %d", e.Path, e.Status)
}

// Temporary reports whether the failure is worth retrying: server
// errors and rate limiting, per the upstream's documented behavior.
func (e *StatusError) Temporary() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// isTransient reports whether err should be treated as a transient
// upstream failure. Timeouts and network errors count; terminal auth
// errors never do.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
