package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrExhaustedRetries is matched by every error returned once the retry
	// budget has been spent.
	ErrExhaustedRetries = errors.New("gateway: retries exhausted")

	// ErrEmptyResponse is recorded when a call completed with blank text.
	ErrEmptyResponse = errors.New("gateway: empty response")

	// ErrAttemptTimeout is recorded when a call did not finish before the
	// per-attempt deadline.
	ErrAttemptTimeout = errors.New("gateway: attempt timed out")
)

// ExhaustedError reports a spent retry budget along with the last failure.
type ExhaustedError struct {
	Attempts int
	Last     Outcome
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gateway: retries exhausted after %d attempts (last outcome %s): %v", e.Attempts, e.Last, e.Err)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhaustedRetries
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
