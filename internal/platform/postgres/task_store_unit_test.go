package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "report", expected: "report"},
		{input: "100%", expected: `100\%`},
		{input: "snake_case", expected: `snake\_case`},
		{input: `C:\tmp`, expected: `C:\\tmp`},
		{input: `%_\`, expected: `\%\_\\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, escapeLike(tt.input), "input %q", tt.input)
	}
}

func TestWhereClause(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	id := domain.TaskID(uuid.New().String())
	status := domain.StatusCompleted
	priority := domain.PriorityHigh

	t.Run("owner only", func(t *testing.T) {
		var args queryArgs
		where := whereClause(store.TaskFilter{OwnerID: owner}, &args)

		assert.Equal(t, "user_id = $1", where)
		assert.Equal(t, []any{owner}, args.values)
	})

	t.Run("all fields", func(t *testing.T) {
		var args queryArgs
		where := whereClause(store.TaskFilter{
			OwnerID:  owner,
			ID:       &id,
			Status:   &status,
			Priority: &priority,
			Search:   "50%",
		}, &args)

		assert.Equal(t,
			`user_id = $1 AND id = $2 AND status = $3 AND priority = $4 AND `+
				`(title ILIKE $5 ESCAPE '\' OR description ILIKE $5 ESCAPE '\')`,
			where)
		assert.Equal(t, []any{owner, id.String(), "completed", "high", `%50\%%`}, args.values)
	})
}

func TestSetClause(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty patch touches updated_at", func(t *testing.T) {
		var args queryArgs
		set := setClause(domain.TaskPatch{}, now, &args)

		assert.Equal(t, "updated_at = $1", set)
		assert.Equal(t, []any{now}, args.values)
	})

	t.Run("placeholders continue into the where clause", func(t *testing.T) {
		title := "Renamed"
		empty := ""
		var args queryArgs
		set := setClause(domain.TaskPatch{Title: &title, Description: &empty}, now, &args)
		where := whereClause(store.TaskFilter{OwnerID: uuid.Nil}, &args)

		assert.Equal(t, "title = $1, description = $2, updated_at = $3", set)
		assert.Equal(t, "user_id = $4", where)
		assert.Len(t, args.values, 4)
	})
}

func TestParseID(t *testing.T) {
	t.Parallel()

	s := &PostgresTaskStore{}

	_, err := s.ParseID("64b7f0c2e4b0a1a2b3c4d5e6")
	assert.ErrorIs(t, err, store.ErrInvalidID)

	id := uuid.New()
	parsed, err := s.ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID(id.String()), parsed)
}

func TestUnscopedFilterIsRefusedBeforeQuery(t *testing.T) {
	t.Parallel()

	// A nil db would panic if any statement were issued.
	s := &PostgresTaskStore{}
	ctx := context.Background()

	_, err := s.Find(ctx, store.TaskFilter{})
	assert.ErrorIs(t, err, store.ErrUnscopedFilter)

	_, err = s.FindOneAndDelete(ctx, store.TaskFilter{OwnerID: uuid.New()})
	assert.ErrorIs(t, err, store.ErrMissingID)
}

func TestNewPostgresTaskStorePanicsOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewPostgresTaskStore(nil, time.Second, nil)
	})
}
