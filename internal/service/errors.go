package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasks-api/internal/store"
)

// Common service errors - sentinel errors returned by TaskService.
// Callers use errors.Is to check for them; the API layer maps them to
// HTTP status codes.
var (
	// ErrTaskNotFound indicates that the current user has no task with the
	// requested ID. A task owned by someone else is reported the same way.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidTaskID indicates that the ID is not addressable by the
	// configured store.
	ErrInvalidTaskID = fmt.Errorf("invalid task ID: %w", store.ErrInvalidID)
)

// TaskServiceError is a custom error type for unexpected task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
