package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// ErrRateLimit reports a 429 from the vendor. Retryable; RetryAfter is
// honored by the retry decorator when the vendor supplies it.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrUnavailable reports a vendor outage, timeout, or network failure.
// Retryable a bounded number of times.
type ErrUnavailable struct {
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err == nil {
		return "text generator unavailable"
	}
	return fmt.Sprintf("text generator unavailable: %v", e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrBadResponse reports model output that failed schema validation or
// could not be parsed. Retried once at most; persistent bad output is a
// prompt or schema problem, not a transient fault.
type ErrBadResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrBadResponse) Error() string {
	return fmt.Sprintf("invalid generator response: %v", e.Err)
}

func (e *ErrBadResponse) Unwrap() error { return e.Err }
