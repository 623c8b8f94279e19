package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskService provides the owner-scoped task operations. Every method
// takes the ID of the authenticated user and never reads or changes a
// task owned by anyone else.
type TaskService interface {
	// List returns the owner's tasks matching query, newest first.
	List(ctx context.Context, owner uuid.UUID, query domain.TaskQuery) ([]*domain.Task, error)

	// Get returns one of the owner's tasks.
	Get(ctx context.Context, owner uuid.UUID, rawID string) (*domain.Task, error)

	// Create stores a new task for the owner, filling in defaults.
	Create(ctx context.Context, owner uuid.UUID, input domain.NewTask) (*domain.Task, error)

	// Update applies patch to one of the owner's tasks and returns the result.
	Update(ctx context.Context, owner uuid.UUID, rawID string, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes one of the owner's tasks.
	Delete(ctx context.Context, owner uuid.UUID, rawID string) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	store  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if the store is nil.
func NewTaskService(taskStore store.TaskStore, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:  taskStore,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// ownedBy returns a filter scoped to owner. It is the only place filters
// are built, so no store call can be issued without an owner.
func ownedBy(owner uuid.UUID, id *domain.TaskID) store.TaskFilter {
	return store.TaskFilter{OwnerID: owner, ID: id}
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(
	ctx context.Context,
	owner uuid.UUID,
	query domain.TaskQuery,
) ([]*domain.Task, error) {
	if owner == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter := ownedBy(owner, nil)
	filter.Status = query.Status
	filter.Priority = query.Priority
	filter.Search = query.Search

	tasks, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, s.storeFailure(log, "list_tasks", "failed to list tasks", owner, err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", owner.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, owner uuid.UUID, rawID string) (*domain.Task, error) {
	filter, err := s.single(owner, rawID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.store.FindOne(ctx, filter)
	if err != nil {
		return nil, s.storeFailure(log, "get_task", "failed to retrieve task", owner, err)
	}
	return task, nil
}

// Create implements TaskService.Create.
// Omitted fields default to an empty description, pending status and
// medium priority.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	owner uuid.UUID,
	input domain.NewTask,
) (*domain.Task, error) {
	if owner == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	task := &domain.Task{
		OwnerID:  owner,
		Title:    input.Title,
		Status:   domain.StatusPending,
		Priority: domain.PriorityMedium,
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	created, err := s.store.Insert(ctx, task)
	if err != nil {
		return nil, s.storeFailure(log, "create_task", "failed to create task", owner, err)
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("user_id", owner.String()))
	return created, nil
}

// Update implements TaskService.Update.
// An empty patch still resolves the task and touches its update time.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	owner uuid.UUID,
	rawID string,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	filter, err := s.single(owner, rawID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	updated, err := s.store.FindOneAndUpdate(ctx, filter, patch)
	if err != nil {
		return nil, s.storeFailure(log, "update_task", "failed to update task", owner, err)
	}

	log.Info("task updated",
		slog.String("task_id", updated.ID.String()),
		slog.String("user_id", owner.String()))
	return updated, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, owner uuid.UUID, rawID string) error {
	filter, err := s.single(owner, rawID)
	if err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	deleted, err := s.store.FindOneAndDelete(ctx, filter)
	if err != nil {
		return s.storeFailure(log, "delete_task", "failed to delete task", owner, err)
	}

	log.Info("task deleted",
		slog.String("task_id", deleted.ID.String()),
		slog.String("user_id", owner.String()))
	return nil
}

// single builds the filter for a single-task operation.
func (s *taskServiceImpl) single(owner uuid.UUID, rawID string) (store.TaskFilter, error) {
	if owner == uuid.Nil {
		return store.TaskFilter{}, domain.ErrUnauthorized
	}
	id, err := s.store.ParseID(rawID)
	if err != nil {
		return store.TaskFilter{}, ErrInvalidTaskID
	}
	return ownedBy(owner, &id), nil
}

// storeFailure translates a store error into the service's outcomes.
// Expected outcomes are returned as sentinels; anything else is logged
// and wrapped.
func (s *taskServiceImpl) storeFailure(
	log *slog.Logger,
	operation, message string,
	owner uuid.UUID,
	err error,
) error {
	switch {
	case store.IsNotFoundError(err):
		log.Debug("task not found",
			slog.String("operation", operation),
			slog.String("user_id", owner.String()))
		return ErrTaskNotFound
	case errors.Is(err, store.ErrInvalidID):
		return ErrInvalidTaskID
	}

	log.Error(message,
		slog.String("operation", operation),
		slog.String("user_id", owner.String()),
		slog.String("error", redact.Error(err)))
	return NewTaskServiceError(operation, message, err)
}
