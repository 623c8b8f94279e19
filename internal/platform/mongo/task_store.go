// Package mongo provides the MongoDB implementation of store.TaskStore.
// Tasks live in a single collection keyed by ObjectID; the owner is kept
// as the string form of the user UUID.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the collection holding task documents.
const CollectionName = "tasks"

// documentValidationFailure is the server code for a rejected document.
const documentValidationFailure = 121

// taskDocument is the stored shape of a task.
type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *taskDocument) toDomain() (*domain.Task, error) {
	owner, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q: %w", d.UserID, err)
	}
	status, err := domain.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParsePriority(d.Priority)
	if err != nil {
		return nil, err
	}
	return &domain.Task{
		ID:          domain.TaskID(d.ID.Hex()),
		OwnerID:     owner,
		Title:       d.Title,
		Description: d.Description,
		Status:      status,
		Priority:    priority,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}, nil
}

// TaskStore implements store.TaskStore on a MongoDB collection.
type TaskStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore wraps an existing collection. The caller keeps ownership of
// the client; Close is a no-op. If logger is nil, a default logger will be used.
func NewTaskStore(coll *mongo.Collection, timeout time.Duration, logger *slog.Logger) *TaskStore {
	if coll == nil {
		panic("collection cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}
	// BSON dates carry millisecond precision.
	return &TaskStore{
		coll:    coll,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		logger:  logger.With(slog.String("component", "mongo_task_store")),
	}
}

// Connect dials uri, verifies the connection, ensures the owner/creation
// index exists, and returns a store that owns the client.
func Connect(ctx context.Context, uri, database string, timeout time.Duration, logger *slog.Logger) (*TaskStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := NewTaskStore(client.Database(database).Collection(CollectionName), timeout, logger)
	s.client = client

	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the index serving owner-scoped, newest-first listing.
func (s *TaskStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_id_created_at"),
	})
	if err != nil {
		return fmt.Errorf("failed to create task index: %w", err)
	}
	return nil
}

// ParseID accepts 24-character hex ObjectIDs.
func (s *TaskStore) ParseID(raw string) (domain.TaskID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return "", store.ErrInvalidID
	}
	return domain.TaskID(oid.Hex()), nil
}

// Find implements store.TaskStore.Find.
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if err := filter.CheckScoped(); err != nil {
		return nil, err
	}
	query, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, s.fail(log, "find", "failed to query tasks", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, s.fail(log, "find", "failed to decode tasks", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for i := range docs {
		task, err := docs[i].toDomain()
		if err != nil {
			return nil, s.fail(log, "find", "stored task is malformed", err)
		}
		tasks = append(tasks, task)
	}

	log.Debug("listed tasks",
		slog.String("user_id", filter.OwnerID.String()),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// FindOne implements store.TaskStore.FindOne.
func (s *TaskStore) FindOne(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	query, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.decodeSingle(ctx, "find_one", s.coll.FindOne(ctx, query))
}

// Insert implements store.TaskStore.Insert.
func (s *TaskStore) Insert(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.OwnerID == uuid.Nil {
		return nil, store.NewStoreError("task", "insert", "task has no owner", store.ErrInvalidEntity)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now()
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		UserID:      task.OwnerID.String(),
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status.String(),
		Priority:    task.Priority.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, s.fail(log, "insert", "failed to insert task", err)
	}

	created, err := doc.toDomain()
	if err != nil {
		return nil, s.fail(log, "insert", "stored task is malformed", err)
	}
	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("user_id", created.OwnerID.String()))
	return created, nil
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
	query, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := s.coll.FindOneAndUpdate(ctx, query, bson.M{"$set": buildSet(patch, s.now())}, opts)
	return s.decodeSingle(ctx, "update", res)
}

// FindOneAndDelete implements store.TaskStore.FindOneAndDelete.
func (s *TaskStore) FindOneAndDelete(ctx context.Context, filter store.TaskFilter) (*domain.Task, error) {
	if err := filter.CheckSingle(); err != nil {
		return nil, err
	}
	query, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.decodeSingle(ctx, "delete", s.coll.FindOneAndDelete(ctx, query))
}

// Close disconnects the client when the store owns it.
func (s *TaskStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *TaskStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *TaskStore) decodeSingle(ctx context.Context, operation string, res *mongo.SingleResult) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var doc taskDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Debug("task not found", slog.String("operation", operation))
			return nil, store.ErrTaskNotFound
		}
		return nil, s.fail(log, operation, "task operation failed", err)
	}

	task, err := doc.toDomain()
	if err != nil {
		return nil, s.fail(log, operation, "stored task is malformed", err)
	}
	log.Debug("task operation succeeded",
		slog.String("operation", operation),
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.OwnerID.String()))
	return task, nil
}

// fail logs a redacted form of err and wraps it in a StoreError.
func (s *TaskStore) fail(log *slog.Logger, operation, message string, err error) error {
	mapped := mapError(err)
	log.Error(message,
		slog.String("operation", operation),
		slog.String("error", redact.Error(mapped)))
	return store.NewStoreError("task", operation, message, mapped)
}

// mapError classifies driver errors into store errors.
func mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
	}
	var we mongo.WriteException
	if errors.As(err, &we) && we.HasErrorCode(documentValidationFailure) {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}

// buildFilter translates an owner-scoped filter into a query document.
func buildFilter(f store.TaskFilter) (bson.M, error) {
	query := bson.M{"user_id": f.OwnerID.String()}
	if f.ID != nil {
		oid, err := primitive.ObjectIDFromHex(f.ID.String())
		if err != nil {
			return nil, store.ErrInvalidID
		}
		query["_id"] = oid
	}
	if f.Status != nil {
		query["status"] = f.Status.String()
	}
	if f.Priority != nil {
		query["priority"] = f.Priority.String()
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query, nil
}

// buildSet returns the $set document for patch. updated_at is always set.
func buildSet(p domain.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Status != nil {
		set["status"] = p.Status.String()
	}
	if p.Priority != nil {
		set["priority"] = p.Priority.String()
	}
	return set
}
