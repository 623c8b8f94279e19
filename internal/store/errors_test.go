package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrTaskNotFound",
			err:      ErrTaskNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrTaskNotFound",
			err:      fmt.Errorf("failed to find task: %w", ErrTaskNotFound),
			expected: true,
		},
		{
			name:     "StoreError wrapping ErrTaskNotFound",
			err:      NewStoreError("task", "update", "no match", ErrTaskNotFound),
			expected: true,
		},
		{
			name:     "ErrInvalidID",
			err:      ErrInvalidID,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("task", "find", "query failed", cause)

	want := "find operation on task failed: query failed: connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("StoreError should unwrap to its cause")
	}

	bare := NewStoreError("task", "insert", "rejected", nil)
	if bare.Error() != "insert operation on task failed: rejected" {
		t.Errorf("unexpected message without cause: %q", bare.Error())
	}
}

func TestTaskFilterScope(t *testing.T) {
	id := domain.TaskID("abc")

	if err := (TaskFilter{}).CheckScoped(); !errors.Is(err, ErrUnscopedFilter) {
		t.Errorf("filter without owner: got %v, want ErrUnscopedFilter", err)
	}
	if err := (TaskFilter{ID: &id}).CheckSingle(); !errors.Is(err, ErrUnscopedFilter) {
		t.Errorf("single filter without owner: got %v, want ErrUnscopedFilter", err)
	}
	if err := (TaskFilter{OwnerID: uuid.New()}).CheckSingle(); !errors.Is(err, ErrMissingID) {
		t.Errorf("single filter without id: got %v, want ErrMissingID", err)
	}
	if err := (TaskFilter{OwnerID: uuid.New(), ID: &id}).CheckSingle(); err != nil {
		t.Errorf("complete filter: unexpected error %v", err)
	}
}
