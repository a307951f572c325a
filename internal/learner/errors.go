package learner

import "fmt"

// ValidationError rejects malformed input at the boundary. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an absent skill or learner state. Callers treat
// it as "nothing to show", not as a failure.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DependencyError reports a store or text-generator failure after bounded
// retries or a timeout. Idempotent reads may be retried by the caller;
// state writes are safe to retry because attempts upsert by attempt ID.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency failure in %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
