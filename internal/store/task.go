package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskFilter selects tasks within a single owner's collection. OwnerID is
// mandatory; stores refuse a filter without it. Nil fields and an empty
// Search do not constrain the match.
type TaskFilter struct {
	OwnerID  uuid.UUID
	ID       *domain.TaskID
	Status   *domain.Status
	Priority *domain.Priority
	// Search matches tasks whose title or description contains the term,
	// case-insensitively. The term is literal text, never a pattern.
	Search string
}

// CheckScoped returns ErrUnscopedFilter if the filter has no owner.
func (f TaskFilter) CheckScoped() error {
	if f.OwnerID == uuid.Nil {
		return ErrUnscopedFilter
	}
	return nil
}

// CheckSingle returns an error unless the filter is owner-scoped and
// addresses exactly one identifier.
func (f TaskFilter) CheckSingle() error {
	if err := f.CheckScoped(); err != nil {
		return err
	}
	if f.ID == nil {
		return ErrMissingID
	}
	return nil
}

// TaskStore is a document collection of tasks. Every method takes a filter
// that carries the owner; implementations must never match a task owned
// by anyone else.
type TaskStore interface {
	// ParseID checks that raw is a well-formed identifier for this store.
	// Returns ErrInvalidID if it is not.
	ParseID(raw string) (domain.TaskID, error)

	// Find returns every task matching the filter, newest first by
	// CreatedAt. No match is an empty slice, not an error.
	Find(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// FindOne returns the single task matching the filter.
	// Returns ErrTaskNotFound if there is none.
	FindOne(ctx context.Context, filter TaskFilter) (*domain.Task, error)

	// Insert persists a new task. The store assigns ID, CreatedAt and
	// UpdatedAt and returns the stored task; the argument is not modified.
	Insert(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindOneAndUpdate atomically applies the patch to the single task
	// matching the filter, bumps UpdatedAt, and returns the task as it is
	// after the update. Returns ErrTaskNotFound if there is no match.
	FindOneAndUpdate(ctx context.Context, filter TaskFilter, patch domain.TaskPatch) (*domain.Task, error)

	// FindOneAndDelete atomically removes the single task matching the
	// filter and returns it. Returns ErrTaskNotFound if there is no match.
	FindOneAndDelete(ctx context.Context, filter TaskFilter) (*domain.Task, error)

	// Close releases the store's connections.
	Close(ctx context.Context) error
}
