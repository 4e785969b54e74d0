package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestReaderFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	engine, reader := newTestEngine(t, store)

	admin := testActor()
	other := NewActor(&domain.User{Tracking: domain.Tracking{ID: "user-2"}, Name: "Other"}, nil)

	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, admin, c))
	for _, name := range []string{"a", "b", "c"} {
		_, err := engine.Update(ctx, other, c, map[string]any{"name": name})
		require.NoError(t, err)
	}
	s := &domain.ContactStatus{Name: "Hot", Code: "hot", Color: "#FF0000", IsDeletable: true}
	require.NoError(t, engine.Create(ctx, admin, s))

	updates, err := reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{Action: domain.ActionUpdate, Limit: 2})
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "c", updates[0].Changes[0].NewValue)
	assert.Equal(t, "b", updates[1].Changes[0].NewValue)

	page2, err := reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{Action: domain.ActionUpdate, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "a", page2[0].Changes[0].NewValue)

	mine, err := reader.ForActor(ctx, "user-1", Query{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, domain.EntityContactStatus, mine[0].EntityType)
	assert.Equal(t, domain.EntityContact, mine[1].EntityType)

	recent, err := reader.Recent(ctx, RecentQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, domain.ActionCreate, recent[0].Action)
	assert.Equal(t, domain.EntityContactStatus, recent[0].EntityType)

	creates, err := reader.Recent(ctx, RecentQuery{Action: domain.ActionCreate})
	require.NoError(t, err)
	assert.Len(t, creates, 2)
}

func TestReaderDateRange(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())
	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	future := time.Now().Add(24 * time.Hour * 365 * 50)
	entries, err := reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{From: &future})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	past := future.Add(-24 * time.Hour)
	_, err = reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{From: &future, To: &past})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{Action: "rename"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestReaderReturnsFullHistoryWithoutLimit(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())
	admin := testActor()

	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, admin, c))
	for i := 0; i < 60; i++ {
		_, err := engine.Update(ctx, admin, c, map[string]any{"name": fmt.Sprintf("name-%d", i)})
		require.NoError(t, err)
	}

	entries, err := reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{})
	require.NoError(t, err)
	require.Len(t, entries, 61)
	assert.Equal(t, domain.ActionCreate, entries[60].Action)

	mine, err := reader.ForActor(ctx, "user-1", Query{})
	require.NoError(t, err)
	assert.Len(t, mine, 61)

	recent, err := reader.Recent(ctx, RecentQuery{})
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)

	paged, err := reader.ForDocument(ctx, domain.EntityContact, c.ID, Query{Limit: 10, Offset: 55})
	require.NoError(t, err)
	require.Len(t, paged, 6)
	assert.Equal(t, domain.ActionCreate, paged[5].Action)
}
