// Package memory provides an in-process implementation of store.TaskStore.
// It backs local development (database.driver=memory) and the service and
// HTTP tests. Contents are lost when the process exits.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// record is a stored task plus its insertion sequence, which orders tasks
// sharing a CreatedAt timestamp.
type record struct {
	task domain.Task
	seq  uint64
}

// TaskStore implements store.TaskStore with a map guarded by a RWMutex.
type TaskStore struct {
	mu     sync.RWMutex
	tasks  map[domain.TaskID]*record
	seq    uint64
	now    func() time.Time
	logger *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates an empty in-memory task store.
// If logger is nil, a default logger will be used.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		tasks:  make(map[domain.TaskID]*record),
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With(slog.String("component", "memory_task_store")),
	}
}

// WithClock replaces the time source; used by tests that need control over
// timestamps.
func (s *TaskStore) WithClock(now func() time.Time) *TaskStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// ParseID accepts canonical UUID strings.
func (s *TaskStore) ParseID(raw string) (domain.TaskID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", store.ErrInvalidID
	}
	return domain.TaskID(id.String()), nil
}

// Find implements store.TaskStore.Find.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if err := filter.CheckScoped(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]*record, 0, len(s.tasks))
	for _, r := range s.tasks {
		if matches(&r.task, filter) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*domain.Task, len(matched))
	for i, r := range matched {
		t := r.task
		result[i] = &t
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("listed tasks",
		slog.String("user_id", filter.OwnerID.String()),
		slog.Int("count", len(result)))
	return result, nil
}

// FindOne implements store.TaskStore.FindOne.
func (s *TaskStore) FindOne(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.lookup(filter)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t := r.task
	return &t, nil
}

// Insert implements store.TaskStore.Insert.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.OwnerID == uuid.Nil {
		return nil, store.NewStoreError("task", "insert", "task has no owner", store.ErrInvalidEntity)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *task
	stored.ID = domain.TaskID(uuid.New().String())
	now := s.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.seq++
	s.tasks[stored.ID] = &record{task: stored, seq: s.seq}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task inserted",
		slog.String("task_id", stored.ID.String()),
		slog.String("user_id", stored.OwnerID.String()))

	out := stored
	return &out, nil
}

// FindOneAndUpdate implements store.TaskStore.FindOneAndUpdate.
func (s *TaskStore) FindOneAndUpdate(
	ctx context.Context,
	filter store.TaskFilter,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.lookup(filter)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	patch.Apply(&r.task)
	r.task.UpdatedAt = s.now()

	t := r.task
	return &t, nil
}

// FindOneAndDelete implements store.TaskStore.FindOneAndDelete.
func (s *TaskStore) FindOneAndDelete(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.lookup(filter)
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	delete(s.tasks, r.task.ID)

	t := r.task
	return &t, nil
}

// Close is a no-op.
func (s *TaskStore) Close(context.Context) error {
	return nil
}

// lookup finds the record addressed by a single-task filter. The caller
// holds the lock.
func (s *TaskStore) lookup(filter store.TaskFilter) (*record, bool) {
	r, ok := s.tasks[*filter.ID]
	if !ok || !matches(&r.task, filter) {
		return nil, false
	}
	return r, true
}

func matches(t *domain.Task, f store.TaskFilter) bool {
	if t.OwnerID != f.OwnerID {
		return false
	}
	if f.ID != nil && t.ID != *f.ID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	return true
}
