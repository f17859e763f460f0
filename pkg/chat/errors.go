package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports an empty user message or a malformed turn.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIndex reports a restart index that is negative, odd, or
	// beyond the current number of user-visible turns.
	ErrInvalidIndex = errors.New("invalid index")
)

// InferenceError wraps a failure from the session's responder. The cause is
// preserved unmodified and reachable through errors.Unwrap.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
