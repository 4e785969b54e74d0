package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type failingStore struct {
	repository.DocumentStore
	appendErr error
}

func (s *failingStore) InTransaction(ctx context.Context, fn func(tx repository.Tx) error) error {
	return s.DocumentStore.InTransaction(ctx, func(tx repository.Tx) error {
		return fn(&failingTx{Tx: tx, err: s.appendErr})
	})
}

type failingTx struct {
	repository.Tx
	err error
}

func (t *failingTx) AppendHistory(context.Context, *domain.HistoryEntry) error {
	return t.err
}

func newTestEngine(t *testing.T, store repository.DocumentStore) (*Engine, *Reader) {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	engine := NewEngine(EngineDependencies{Store: store, Now: clock.Now})
	return engine, NewReader(store)
}

func testActor() ActorContext {
	u := domain.NewUser("Admin", "admin@example.com")
	u.ID = "user-1"
	u.IsAdmin = true
	return NewActor(u, &domain.HistoryMetadata{IPAddress: "10.0.0.1"})
}

func documentHistory(t *testing.T, reader *Reader, entityType domain.EntityType, id string) []domain.HistoryEntry {
	t.Helper()
	entries, err := reader.ForDocument(context.Background(), entityType, id, Query{})
	require.NoError(t, err)
	return entries
}

func TestCreateRecordsSingleEntry(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())

	c := domain.NewContact("5141234567")
	c.Name = "A"
	require.NoError(t, engine.Create(ctx, testActor(), c))
	require.NotEmpty(t, c.ID)
	assert.Equal(t, int64(1), c.Version)
	require.NotNil(t, c.CreatedBy)
	assert.Equal(t, "user-1", *c.CreatedBy)

	entries := documentHistory(t, reader, domain.EntityContact, c.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)
	assert.Equal(t, "5141234567", entries[0].InitialDocument["phone"])
	assert.Equal(t, "A", entries[0].InitialDocument["name"])
	assert.NotContains(t, entries[0].InitialDocument, "history")
	require.NotNil(t, entries[0].UserSnapshot)
	assert.Equal(t, "admin@example.com", entries[0].UserSnapshot.Email)
	assert.Nil(t, entries[0].Metadata)
}

func TestCreateRejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())

	first := domain.NewContact(domain.NormalizePhone("(514) 123-4567"))
	require.NoError(t, engine.Create(ctx, testActor(), first))

	second := domain.NewContact(domain.NormalizePhone("5141234567"))
	err := engine.Create(ctx, testActor(), second)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Empty(t, second.ID)

	recent, err := reader.Recent(ctx, RecentQuery{})
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestCreateValidatesRecord(t *testing.T) {
	engine, _ := newTestEngine(t, repository.NewMemoryStore())
	err := engine.Create(context.Background(), testActor(), domain.NewContact("123"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestUpdateDiffsOnlyChangedFields(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())

	c := domain.NewContact("5141234567")
	c.Name = "A"
	require.NoError(t, engine.Create(ctx, testActor(), c))

	changes, err := engine.Update(ctx, testActor(), c, map[string]any{"name": "B", "email": "x@x.com"})
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.FieldChange{Field: "email", OldValue: nil, NewValue: "x@x.com"}, changes[0])
	assert.Equal(t, domain.FieldChange{Field: "name", OldValue: "A", NewValue: "B"}, changes[1])
	assert.Equal(t, "B", c.Name)
	assert.Equal(t, int64(2), c.Version)

	changes, err = engine.Update(ctx, testActor(), c, map[string]any{"name": "B"})
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Equal(t, int64(3), c.Version)

	entries := documentHistory(t, reader, domain.EntityContact, c.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionUpdate, entries[0].Action)
	assert.Len(t, entries[0].Changes, 2)
}

func TestUpdateNestedSequenceIsStructural(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())

	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	author := "user-1"
	notes := append([]domain.Note{}, c.Notes...)
	notes = append(notes, domain.Note{Content: "hello", CreatedBy: &author, CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)})
	changes, err := engine.Update(ctx, testActor(), c, map[string]any{"notes": notes})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "notes", changes[0].Field)
	require.Len(t, c.Notes, 1)

	same := append([]domain.Note{}, c.Notes...)
	changes, err = engine.Update(ctx, testActor(), c, map[string]any{"notes": same})
	require.NoError(t, err)
	assert.Empty(t, changes)
	assert.Len(t, documentHistory(t, reader, domain.EntityContact, c.ID), 2)
}

func TestUpdateRejectsProtectedAndUnknownFields(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, repository.NewMemoryStore())
	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	_, err := engine.Update(ctx, testActor(), c, map[string]any{"version": 10})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	_, err = engine.Update(ctx, testActor(), c, map[string]any{"favouriteColour": "red"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, int64(1), c.Version)
}

func TestUpdateMissingRecordIsNotFound(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, repository.NewMemoryStore())
	c := domain.NewContact("5141234567")
	c.ID = "ghost"
	c.Version = 1
	_, err := engine.Update(ctx, testActor(), c, map[string]any{"name": "B"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, "", c.Name)
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	engine, _ := newTestEngine(t, store)
	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	stale := *c
	_, err := engine.Update(ctx, testActor(), c, map[string]any{"name": "first"})
	require.NoError(t, err)

	_, err = engine.Update(ctx, testActor(), &stale, map[string]any{"name": "second"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, "", stale.Name)
}

func TestStoreFailureRollsBackRecordAndHistory(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewMemoryStore()
	engine, reader := newTestEngine(t, mem)
	c := domain.NewContact("5141234567")
	c.Name = "A"
	require.NoError(t, engine.Create(ctx, testActor(), c))

	broken := NewEngine(EngineDependencies{Store: &failingStore{DocumentStore: mem, appendErr: errors.New("disk full")}})
	_, err := broken.Update(ctx, testActor(), c, map[string]any{"name": "B"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodePersistence))
	assert.Equal(t, "A", c.Name)
	assert.Equal(t, int64(1), c.Version)

	stored, err := mem.Get(ctx, domain.EntityContact, c.ID)
	require.NoError(t, err)
	var persisted domain.Contact
	require.NoError(t, stored.Decode(&persisted))
	assert.Equal(t, "A", persisted.Name)
	assert.Len(t, documentHistory(t, reader, domain.EntityContact, c.ID), 1)

	orphan := domain.NewContact("5149999999")
	require.Error(t, broken.Create(ctx, testActor(), orphan))
	count, err := mem.Count(ctx, domain.EntityContact, repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteKeepsSnapshotInHistory(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	engine, reader := newTestEngine(t, store)
	c := domain.NewContact("5141234567")
	c.Name = "C"
	require.NoError(t, engine.Create(ctx, testActor(), c))
	_, err := engine.Update(ctx, testActor(), c, map[string]any{"city": "Montreal"})
	require.NoError(t, err)

	require.NoError(t, engine.Delete(ctx, testActor(), c))
	_, err = store.Get(ctx, domain.EntityContact, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	entries := documentHistory(t, reader, domain.EntityContact, c.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.ActionDelete, entries[0].Action)
	assert.Equal(t, "C", entries[0].DeletedDocument["name"])
	assert.Equal(t, "Montreal", entries[0].DeletedDocument["city"])
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i-1].Timestamp.Before(entries[i].Timestamp))
	}

	err = engine.Delete(ctx, testActor(), c)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestHistoryLengthNeverShrinks(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())
	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	var snapshots [][]domain.HistoryEntry
	snapshots = append(snapshots, documentHistory(t, reader, domain.EntityContact, c.ID))
	for _, name := range []string{"a", "b", "b", "c"} {
		_, err := engine.Update(ctx, testActor(), c, map[string]any{"name": name})
		require.NoError(t, err)
		snapshots = append(snapshots, documentHistory(t, reader, domain.EntityContact, c.ID))
	}
	require.NoError(t, engine.Delete(ctx, testActor(), c))
	snapshots = append(snapshots, documentHistory(t, reader, domain.EntityContact, c.ID))

	for i := 1; i < len(snapshots); i++ {
		prev, next := snapshots[i-1], snapshots[i]
		require.GreaterOrEqual(t, len(next), len(prev))
		offset := len(next) - len(prev)
		for j := range prev {
			assert.Equal(t, prev[j], next[j+offset])
		}
	}
	assert.Len(t, snapshots[len(snapshots)-1], 5)
}

func TestPasswordHashIsRedacted(t *testing.T) {
	ctx := context.Background()
	engine, reader := newTestEngine(t, repository.NewMemoryStore())
	u := domain.NewUser("Tel", "tel@example.com")
	u.PasswordHash = "secret-hash"
	require.NoError(t, engine.Create(ctx, SystemActor(), u))

	changes, err := engine.Update(ctx, SystemActor(), u, map[string]any{"passwordHash": "other-hash"})
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, redactedValue, changes[0].OldValue)
	assert.Equal(t, "other-hash", u.PasswordHash)

	entries := documentHistory(t, reader, domain.EntityUser, u.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, redactedValue, entries[1].InitialDocument["passwordHash"])
	assert.Nil(t, entries[1].UserID)
}

func TestMetadataIsOptIn(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	engine := NewEngine(EngineDependencies{Store: store, CaptureMetadata: true})
	c := domain.NewContact("5141234567")
	require.NoError(t, engine.Create(ctx, testActor(), c))

	entries := documentHistory(t, NewReader(store), domain.EntityContact, c.ID)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Metadata)
	assert.Equal(t, "10.0.0.1", entries[0].Metadata.IPAddress)
}

func TestEnginePublishesRecordedEvent(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher(nil)
	var received []events.Event
	dispatcher.Subscribe(events.EventHistoryRecorded, func(_ context.Context, e events.Event) error {
		received = append(received, e)
		return nil
	})
	engine := NewEngine(EngineDependencies{Store: repository.NewMemoryStore(), Dispatcher: dispatcher})

	s := &domain.ContactStatus{Name: "Hot", Code: "hot", Color: "#FF0000", Order: 5, IsDeletable: true}
	require.NoError(t, engine.Create(ctx, testActor(), s))
	require.Len(t, received, 1)
	assert.Equal(t, domain.EntityContactStatus, received[0].EntityType)
	assert.Equal(t, s.ID, received[0].EntityID)
}

func TestRecordedLogFlagsSystemChanges(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	engine := NewEngine(EngineDependencies{Store: repository.NewMemoryStore(), Logger: zap.New(core)})

	require.NoError(t, engine.Create(ctx, SystemActor(), domain.NewContact("5141234567")))
	require.NoError(t, engine.Create(ctx, testActor(), domain.NewContact("5141234568")))

	recorded := logs.FilterMessage("history recorded").All()
	require.Len(t, recorded, 2)
	assert.Equal(t, true, recorded[0].ContextMap()["system"])
	assert.Equal(t, false, recorded[1].ContextMap()["system"])
}
