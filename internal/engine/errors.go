package engine

import (
	"errors"
	"fmt"
)

// ExecutionError reports a failure while running a query against the store:
// the find itself, reading the cursor, or decoding a record.
//
// The store's error is kept unchanged in Err so callers can match it with
// errors.Is / errors.As (context deadlines, driver network errors, ...).
type ExecutionError struct {
	// Op is the step that failed: "find", "iterate" or "decode".
	Op string

	// Collection is the collection being queried.
	Collection string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("execution error: %s %s: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("execution error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError returns true if err is or wraps an *ExecutionError.
// Uses errors.As to handle wrapped errors.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// ErrResultConsumed is returned when a Result is iterated a second time.
var ErrResultConsumed = errors.New("result already consumed")
