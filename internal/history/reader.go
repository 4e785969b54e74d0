package history

import (
	"context"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

const (
	// DefaultRecentLimit applies to the activity feed only. Per-document
	// and per-actor reads return everything unless a limit is given.
	DefaultRecentLimit = 50
	MaxLimit           = 500
)

// Query filters per-document and per-actor history reads. A zero Limit
// returns every matching entry.
type Query struct {
	Action  domain.HistoryAction
	ActorID string
	From    *time.Time
	To      *time.Time
	Offset  int
	Limit   int
}

// RecentQuery filters the cross-entity activity feed.
type RecentQuery struct {
	Limit  int
	Action domain.HistoryAction
	From   *time.Time
}

// Reader serves history queries, newest first.
type Reader struct {
	store repository.DocumentStore
}

// NewReader builds a Reader.
func NewReader(store repository.DocumentStore) *Reader {
	return &Reader{store: store}
}

// ForDocument returns the history of one record. It keeps working after
// the record was deleted.
func (r *Reader) ForDocument(ctx context.Context, entityType domain.EntityType, id string, q Query) ([]domain.HistoryEntry, error) {
	filter, err := q.filter(0)
	if err != nil {
		return nil, err
	}
	filter.EntityType = entityType
	filter.EntityID = id
	return r.list(ctx, filter)
}

// ForActor returns the entries attributed to actorID across every entity type.
func (r *Reader) ForActor(ctx context.Context, actorID string, q Query) ([]domain.HistoryEntry, error) {
	if actorID == "" {
		return nil, apperrors.NewValidationError("actor id is required", nil)
	}
	q.ActorID = actorID
	filter, err := q.filter(0)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, filter)
}

// Recent returns the latest entries across every entity type.
func (r *Reader) Recent(ctx context.Context, q RecentQuery) ([]domain.HistoryEntry, error) {
	filter, err := Query{Action: q.Action, From: q.From, Limit: q.Limit}.filter(DefaultRecentLimit)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, filter)
}

func (r *Reader) list(ctx context.Context, filter repository.HistoryFilter) ([]domain.HistoryEntry, error) {
	entries, err := r.store.ListHistory(ctx, filter)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

func (q Query) filter(defaultLimit int) (repository.HistoryFilter, error) {
	if q.Action != "" && !q.Action.Valid() {
		return repository.HistoryFilter{}, apperrors.NewValidationError("invalid action", map[string]any{"action": q.Action})
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return repository.HistoryFilter{}, apperrors.NewValidationError("invalid date range", nil)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return repository.HistoryFilter{
		UserID: q.ActorID,
		Action: q.Action,
		From:   q.From,
		To:     q.To,
		Offset: offset,
		Limit:  limit,
	}, nil
}
