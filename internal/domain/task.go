package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Field limits for task text fields, counted in characters (runes).
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// TaskID is the opaque identifier a store assigns to a task.
// Its syntax belongs to the backend that issued it.
type TaskID string

// String returns the identifier as a string.
func (id TaskID) String() string {
	return string(id)
}

// Status is the progress state of a task. The zero value is not a valid
// status; values only come from the package variables or ParseStatus.
type Status struct {
	value string
}

// Task status values.
var (
	StatusPending    = Status{"pending"}
	StatusInProgress = Status{"in-progress"}
	StatusCompleted  = Status{"completed"}
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if st.value == s {
			return st, nil
		}
	}
	return Status{}, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// String returns the wire value of the status.
func (s Status) String() string {
	return s.value
}

// IsValid reports whether s is one of the enumerated statuses.
func (s Status) IsValid() bool {
	return s.value != ""
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, ErrInvalidStatus
	}
	return []byte(s.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority is the importance of a task. The zero value is not a valid
// priority; values only come from the package variables or ParsePriority.
type Priority struct {
	value string
}

// Task priority values.
var (
	PriorityLow    = Priority{"low"}
	PriorityMedium = Priority{"medium"}
	PriorityHigh   = Priority{"high"}
)

// Priorities lists every valid priority in declaration order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts a raw string into a Priority.
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if p.value == s {
			return p, nil
		}
	}
	return Priority{}, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// String returns the wire value of the priority.
func (p Priority) String() string {
	return p.value
}

// IsValid reports whether p is one of the enumerated priorities.
func (p Priority) IsValid() bool {
	return p.value != ""
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, ErrInvalidPriority
	}
	return []byte(p.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          TaskID
	OwnerID     uuid.UUID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask is a validated create request. Optional fields are nil when the
// caller omitted them; defaults are applied by the access layer.
type NewTask struct {
	Title       string
	Description *string
	Status      *Status
	Priority    *Priority
}

// TaskPatch is a validated partial update. Only non-nil fields change.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// TaskQuery is a validated list filter. Nil fields and an empty Search
// do not constrain the result.
type TaskQuery struct {
	Status   *Status
	Priority *Priority
	Search   string
}

// Apply merges the patch into t in place. UpdatedAt is left to the store.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}
