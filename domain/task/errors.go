package task

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when an operation references a task id that
// does not exist in the store.
var ErrTaskNotFound = errors.New("task not found")

// ErrDuplicateTask is returned when duplicate checking is enabled and a new
// task matches the title and description of an existing one.
var ErrDuplicateTask = errors.New("task with the same title and description already exists")

// ErrMalformedRecord is returned when a persisted task record cannot be
// reconstructed (missing field, bad timestamp, unknown enum name).
var ErrMalformedRecord = errors.New("malformed task record")

// ValidationError reports a rejected input field. The wrapped error holds
// the reason without repeating the field name.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
