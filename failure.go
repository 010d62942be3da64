package await

import (
	"errors"
	"fmt"
)

// ErrNotCompleted is returned by [Task.Result] when the task has not yet
// reached a terminal state.
// It marks a usage error on the calling side, so it is never forwarded to
// a [Sink].
var ErrNotCompleted = errors.New("await: task not completed")

// A PanicError is the stored failure of a task body that panicked instead of
// returning an error.
// Value is the recovered panic value and Stack is the panic-site stack text,
// which might take thousands of bytes.
//
// A PanicError can be returned by [Task.Result] any number of times; several
// awaiting levels may each retrieve the same failure.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error, otherwise nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// failureKind names a failure the way a crash report expects: a short type
// tag rather than the message.
func failureKind(err error) string {
	if _, ok := err.(*PanicError); ok {
		return "panic"
	}
	return fmt.Sprintf("%T", err)
}
