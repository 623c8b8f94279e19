package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter(t *testing.T) {
	owner := uuid.New()

	t.Run("owner only", func(t *testing.T) {
		query, err := buildFilter(store.TaskFilter{OwnerID: owner})
		require.NoError(t, err)
		assert.Equal(t, bson.M{"user_id": owner.String()}, query)
	})

	t.Run("all fields", func(t *testing.T) {
		oid := primitive.NewObjectID()
		id := domain.TaskID(oid.Hex())
		status := domain.StatusInProgress
		priority := domain.PriorityLow

		query, err := buildFilter(store.TaskFilter{
			OwnerID:  owner,
			ID:       &id,
			Status:   &status,
			Priority: &priority,
			Search:   "a.b(c)",
		})
		require.NoError(t, err)

		pattern := primitive.Regex{Pattern: `a\.b\(c\)`, Options: "i"}
		assert.Equal(t, bson.M{
			"user_id":  owner.String(),
			"_id":      oid,
			"status":   "in-progress",
			"priority": "low",
			"$or": bson.A{
				bson.M{"title": pattern},
				bson.M{"description": pattern},
			},
		}, query)
	})

	t.Run("malformed id", func(t *testing.T) {
		id := domain.TaskID("not-an-object-id")
		_, err := buildFilter(store.TaskFilter{OwnerID: owner, ID: &id})
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})
}

func TestBuildSet(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, bson.M{"updated_at": now}, buildSet(domain.TaskPatch{}, now))

	title := "Renamed"
	empty := ""
	done := domain.StatusCompleted
	assert.Equal(t, bson.M{
		"updated_at":  now,
		"title":       "Renamed",
		"description": "",
		"status":      "completed",
	}, buildSet(domain.TaskPatch{Title: &title, Description: &empty, Status: &done}, now))
}

func TestParseID(t *testing.T) {
	s := &TaskStore{}

	_, err := s.ParseID(uuid.New().String())
	assert.ErrorIs(t, err, store.ErrInvalidID)

	_, err = s.ParseID("64b7f0c2e4b0a1a2b3c4d5")
	assert.ErrorIs(t, err, store.ErrInvalidID)

	oid := primitive.NewObjectID()
	parsed, err := s.ParseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID(oid.Hex()), parsed)
}

func TestDocumentToDomain(t *testing.T) {
	owner := uuid.New()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		UserID:      owner.String(),
		Title:       "Title",
		Description: "Body",
		Status:      "completed",
		Priority:    "high",
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	task, err := doc.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID(doc.ID.Hex()), task.ID)
	assert.Equal(t, owner, task.OwnerID)
	assert.Equal(t, domain.StatusCompleted, task.Status)
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	doc.Status = "archived"
	_, err = doc.toDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
