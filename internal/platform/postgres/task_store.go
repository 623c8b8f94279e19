package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

const taskColumns = `id, user_id, title, description, status, priority, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db      store.DBTX
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized by the caller.
// A positive timeout bounds every call. If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, timeout time.Duration, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:      db,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger.With(slog.String("component", "task_store")),
	}
}

// ParseID accepts UUID strings and returns them in canonical form.
func (s *PostgresTaskStore) ParseID(raw string) (domain.TaskID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", store.ErrInvalidID
	}
	return domain.TaskID(id.String()), nil
}

// Find implements store.TaskStore.Find.
func (s *PostgresTaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if err := filter.CheckScoped(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	var args queryArgs
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + whereClause(filter, &args) +
		` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, s.fail(log, "find", "failed to query tasks", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", redact.Error(closeErr)))
		}
	}()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, s.fail(log, "find", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(log, "find", "error iterating task rows", err)
	}

	log.Debug("listed tasks",
		slog.String("user_id", filter.OwnerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// FindOne implements store.TaskStore.FindOne.
func (s *PostgresTaskStore) FindOne(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	var args queryArgs
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + whereClause(filter, &args)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args.values...))
	if err != nil {
		return nil, s.singleError(log, "find_one", filter, err)
	}
	return task, nil
}

// Insert implements store.TaskStore.Insert.
func (s *PostgresTaskStore) Insert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.OwnerID == uuid.Nil {
		return nil, store.NewStoreError("task", "insert", "task has no owner", store.ErrInvalidEntity)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	created, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		uuid.New(),
		task.OwnerID,
		task.Title,
		task.Description,
		task.Status.String(),
		task.Priority.String(),
		now,
		now,
	))
	if err != nil {
		return nil, s.fail(log, "insert", "failed to insert task", err)
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("user_id", created.OwnerID.String()))
	return created, nil
}

// FindOneAndUpdate implements store.TaskStore.FindOneAndUpdate.
// The update and the read-back happen in one statement.
func (s *PostgresTaskStore) FindOneAndUpdate(
	ctx context.Context,
	filter store.TaskFilter,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	var args queryArgs
	set := setClause(patch, s.now(), &args)
	query := `UPDATE tasks SET ` + set + ` WHERE ` + whereClause(filter, &args) + ` RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args.values...))
	if err != nil {
		return nil, s.singleError(log, "update", filter, err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.OwnerID.String()))
	return task, nil
}

// FindOneAndDelete implements store.TaskStore.FindOneAndDelete.
func (s *PostgresTaskStore) FindOneAndDelete(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	var args queryArgs
	query := `DELETE FROM tasks WHERE ` + whereClause(filter, &args) + ` RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args.values...))
	if err != nil {
		return nil, s.singleError(log, "delete", filter, err)
	}

	log.Info("task deleted",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.OwnerID.String()))
	return task, nil
}

// Close closes the underlying connection pool when the store owns one.
func (s *PostgresTaskStore) Close(context.Context) error {
	if closer, ok := s.db.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *PostgresTaskStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// singleError converts the error of a single-row statement, reporting a
// missing row as store.ErrTaskNotFound.
func (s *PostgresTaskStore) singleError(
	log *slog.Logger,
	operation string,
	filter store.TaskFilter,
	err error,
) error {
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("task not found",
			slog.String("operation", operation),
			slog.String("task_id", filter.ID.String()),
			slog.String("user_id", filter.OwnerID.String()))
		return store.ErrTaskNotFound
	}
	return s.fail(log, operation, "task statement failed", err)
}

// fail logs a redacted form of err and wraps it in a StoreError.
func (s *PostgresTaskStore) fail(log *slog.Logger, operation, message string, err error) error {
	mapped := MapError(err)
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", redact.Error(mapped)))
	return store.NewStoreError("task", operation, message, mapped)
}

// queryArgs accumulates positional parameters.
type queryArgs struct {
	values []any
}

// add appends v and returns its placeholder.
func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// whereClause renders the owner-scoped predicate for filter.
func whereClause(f store.TaskFilter, args *queryArgs) string {
	conds := []string{"user_id = " + args.add(f.OwnerID)}
	if f.ID != nil {
		conds = append(conds, "id = "+args.add(f.ID.String()))
	}
	if f.Status != nil {
		conds = append(conds, "status = "+args.add(f.Status.String()))
	}
	if f.Priority != nil {
		conds = append(conds, "priority = "+args.add(f.Priority.String()))
	}
	if f.Search != "" {
		p := args.add("%" + escapeLike(f.Search) + "%")
		conds = append(conds, "(title ILIKE "+p+` ESCAPE '\' OR description ILIKE `+p+` ESCAPE '\')`)
	}
	return strings.Join(conds, " AND ")
}

// setClause renders the assignments for patch. updated_at is always set.
func setClause(p domain.TaskPatch, now time.Time, args *queryArgs) string {
	sets := make([]string, 0, 5)
	if p.Title != nil {
		sets = append(sets, "title = "+args.add(*p.Title))
	}
	if p.Description != nil {
		sets = append(sets, "description = "+args.add(*p.Description))
	}
	if p.Status != nil {
		sets = append(sets, "status = "+args.add(p.Status.String()))
	}
	if p.Priority != nil {
		sets = append(sets, "priority = "+args.add(p.Priority.String()))
	}
	sets = append(sets, "updated_at = "+args.add(now))
	return strings.Join(sets, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		id       string
		status   string
		priority string
	)
	if err := row.Scan(
		&id,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if task.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	if task.Priority, err = domain.ParsePriority(priority); err != nil {
		return nil, err
	}
	task.ID = domain.TaskID(id)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}
