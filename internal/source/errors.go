package source

import (
	"fmt"
	"time"
)

// AuthError means the credentials were rejected. Not retryable; the
// whole fetch run aborts.
type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("listing auth rejected (status %d): %s", e.Status, e.Msg)
}

// RateLimitedError means the remote signalled throttling. Retryable,
// but with a longer backoff than plain transport failures.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("remote throttled, retry after %s", e.RetryAfter)
	}
	return "remote throttled"
}

// TransportError wraps a network or server-side failure. Retryable
// with exponential backoff.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("listing transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
