package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	ListFn   func(ctx context.Context, owner uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error)
	GetFn    func(ctx context.Context, owner uuid.UUID, rawID string) (*domain.Task, error)
	CreateFn func(ctx context.Context, owner uuid.UUID, input domain.NewTask) (*domain.Task, error)
	UpdateFn func(ctx context.Context, owner uuid.UUID, rawID string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteFn func(ctx context.Context, owner uuid.UUID, rawID string) error

	// Default response values
	Tasks []*domain.Task
	Task  *domain.Task
	Err   error

	// Call tracking for verification
	mu    sync.Mutex
	Calls []string
}

// Ensure MockTaskService implements service.TaskService interface
var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
}

// CallCount returns how many times the named method was called.
func (m *MockTaskService) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// List implements service.TaskService
func (m *MockTaskService) List(
	ctx context.Context,
	owner uuid.UUID,
	query domain.TaskQuery,
) ([]*domain.Task, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx, owner, query)
	}
	return m.Tasks, m.Err
}

// Get implements service.TaskService
func (m *MockTaskService) Get(ctx context.Context, owner uuid.UUID, rawID string) (*domain.Task, error) {
	m.record("Get")
	if m.GetFn != nil {
		return m.GetFn(ctx, owner, rawID)
	}
	return m.Task, m.Err
}

// Create implements service.TaskService
func (m *MockTaskService) Create(
	ctx context.Context,
	owner uuid.UUID,
	input domain.NewTask,
) (*domain.Task, error) {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, owner, input)
	}
	return m.Task, m.Err
}

// Update implements service.TaskService
func (m *MockTaskService) Update(
	ctx context.Context,
	owner uuid.UUID,
	rawID string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, owner, rawID, patch)
	}
	return m.Task, m.Err
}

// Delete implements service.TaskService
func (m *MockTaskService) Delete(ctx context.Context, owner uuid.UUID, rawID string) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, owner, rawID)
	}
	return m.Err
}
