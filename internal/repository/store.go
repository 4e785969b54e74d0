package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrStale is returned when a replace carries an outdated version.
	ErrStale = errors.New("document version is stale")
)

// DuplicateError reports a unique-key collision on Field.
type DuplicateError struct {
	Type  domain.EntityType
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s for %s", e.Field, e.Type)
}

// Document is the stored form of a trackable record.
type Document struct {
	Type      domain.EntityType
	ID        string
	Version   int64
	Body      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode unmarshals the document body into dst.
func (d *Document) Decode(dst any) error {
	return json.Unmarshal(d.Body, dst)
}

// Filter selects documents of one entity type.
// Match holds top-level fields compared by JSON equality; a nil value
// matches a null field. Search is a case-insensitive substring looked up
// in SearchFields.
type Filter struct {
	Match        map[string]any
	Search       string
	SearchFields []string
	Limit        int
	Offset       int
}

// HistoryFilter selects history entries. Zero values do not filter.
type HistoryFilter struct {
	EntityType domain.EntityType
	EntityID   string
	UserID     string
	Action     domain.HistoryAction
	From       *time.Time
	To         *time.Time
	Offset     int
	Limit      int
}

// Tx is the write side of a store transaction.
type Tx interface {
	Get(ctx context.Context, entityType domain.EntityType, id string) (*Document, error)
	Insert(ctx context.Context, doc *Document) error
	// Replace overwrites the body when the stored version equals expectedVersion.
	Replace(ctx context.Context, doc *Document, expectedVersion int64) error
	Remove(ctx context.Context, entityType domain.EntityType, id string) error
	// AppendHistory assigns the next sequence number and clamps the
	// timestamp so it never precedes the record's previous entry.
	AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error
}

// DocumentStore persists trackable records and their append-only history.
type DocumentStore interface {
	Get(ctx context.Context, entityType domain.EntityType, id string) (*Document, error)
	Find(ctx context.Context, entityType domain.EntityType, filter Filter) ([]Document, error)
	Count(ctx context.Context, entityType domain.EntityType, filter Filter) (int, error)
	InTransaction(ctx context.Context, fn func(tx Tx) error) error
	ListHistory(ctx context.Context, filter HistoryFilter) ([]domain.HistoryEntry, error)
	Ping(ctx context.Context) error
}

// uniqueFields lists the top-level fields that must be unique per entity type.
var uniqueFields = map[domain.EntityType][]string{
	domain.EntityContact:       {"phone"},
	domain.EntityContactStatus: {"name", "code"},
	domain.EntityUser:          {"email"},
	domain.EntityRole:          {"code"},
	domain.EntityAgentProfile:  {"userId"},
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	return limit
}
