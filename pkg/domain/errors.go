package domain

import (
	"errors"
	"fmt"
)

// ErrNoHandlerFound is matched by NoHandlerFoundError.
var ErrNoHandlerFound = errors.New("no suitable handler found")

// ErrHandlerExecution is matched by HandlerExecutionError.
var ErrHandlerExecution = errors.New("handler execution failed")

// ErrEmptyTask is returned when a blank task is submitted.
var ErrEmptyTask = errors.New("task must not be empty")

// ErrNilHandler is returned when a registry contains a nil handler.
var ErrNilHandler = errors.New("handler must not be nil")

// NoHandlerFoundError reports that no registered handler accepted the task.
type NoHandlerFoundError struct {
	Task string
}

func (e *NoHandlerFoundError) Error() string {
	return fmt.Sprintf("No suitable agent/handler found for task: %s", e.Task)
}

func (e *NoHandlerFoundError) Is(target error) bool {
	return target == ErrNoHandlerFound
}

// HandlerExecutionError wraps a failure raised by the selected handler.
type HandlerExecutionError struct {
	Handler string
	Task    string
	Err     error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("handler %q failed on task %q: %v", e.Handler, e.Task, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}

func (e *HandlerExecutionError) Is(target error) bool {
	return target == ErrHandlerExecution
}
