package task

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by Task.Await when the task was cancelled
// before it produced a result.
var ErrCancelled = errors.New("task: cancelled")

// PanicError wraps a panic value recovered from a Future's Poll method.
// It unwraps to the recovered value when that value is itself an error,
// so errors.Is/errors.As see through it.
type PanicError struct {
	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("task: poll panicked: %v", e.Value)
}

// Unwrap returns the recovered value if it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
