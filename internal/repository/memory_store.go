package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

type docKey struct {
	entityType domain.EntityType
	id         string
}

// memoryStore keeps documents and history in process. Transactions are
// serialized and applied to a copy that replaces the live state on commit.
type memoryStore struct {
	mu      sync.RWMutex
	docs    map[docKey]Document
	history []domain.HistoryEntry
}

// NewMemoryStore builds an in-process store used for tests and for running
// without a database.
func NewMemoryStore() DocumentStore {
	return &memoryStore{docs: make(map[docKey]Document)}
}

func (s *memoryStore) Ping(context.Context) error { return nil }

func (s *memoryStore) Get(_ context.Context, entityType domain.EntityType, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docKey{entityType, id}]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneDocument(doc)
	return &copied, nil
}

func (s *memoryStore) Find(_ context.Context, entityType domain.EntityType, filter Filter) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched, err := s.match(entityType, filter)
	if err != nil {
		return nil, err
	}
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	matched = matched[start:]
	if limit := normalizeLimit(filter.Limit); limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *memoryStore) Count(_ context.Context, entityType domain.EntityType, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched, err := s.match(entityType, filter)
	return len(matched), err
}

func (s *memoryStore) match(entityType domain.EntityType, filter Filter) ([]Document, error) {
	want := map[string]any{}
	if len(filter.Match) > 0 {
		raw, err := json.Marshal(filter.Match)
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		if err := json.Unmarshal(raw, &want); err != nil {
			return nil, fmt.Errorf("decode filter: %w", err)
		}
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))

	var result []Document
	for key, doc := range s.docs {
		if key.entityType != entityType {
			continue
		}
		var body map[string]any
		if err := json.Unmarshal(doc.Body, &body); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", doc.ID, err)
		}
		if !containsAll(body, want) {
			continue
		}
		if term != "" && len(filter.SearchFields) > 0 && !searchHit(body, filter.SearchFields, term) {
			continue
		}
		result = append(result, cloneDocument(doc))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func containsAll(body, want map[string]any) bool {
	for field, value := range want {
		if !reflect.DeepEqual(body[field], value) {
			return false
		}
	}
	return true
}

func searchHit(body map[string]any, fields []string, term string) bool {
	for _, field := range fields {
		if value, ok := body[field].(string); ok && strings.Contains(strings.ToLower(value), term) {
			return true
		}
	}
	return false
}

func (s *memoryStore) InTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		docs:      make(map[docKey]Document, len(s.docs)),
		committed: s.history,
	}
	for k, v := range s.docs {
		tx.docs[k] = v
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.docs = tx.docs
	s.history = append(s.history, tx.pending...)
	return nil
}

func (s *memoryStore) ListHistory(_ context.Context, filter HistoryFilter) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.HistoryEntry
	for i := len(s.history) - 1; i >= 0; i-- {
		entry := s.history[i]
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if filter.UserID != "" && (entry.UserID == nil || *entry.UserID != filter.UserID) {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.From != nil && entry.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Timestamp.After(*filter.To) {
			continue
		}
		result = append(result, entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	start := filter.Offset
	if start > len(result) {
		start = len(result)
	}
	result = result[start:]
	if limit := normalizeLimit(filter.Limit); limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

type memoryTx struct {
	docs      map[docKey]Document
	committed []domain.HistoryEntry
	pending   []domain.HistoryEntry
}

func (t *memoryTx) Get(_ context.Context, entityType domain.EntityType, id string) (*Document, error) {
	doc, ok := t.docs[docKey{entityType, id}]
	if !ok {
		return nil, ErrNotFound
	}
	copied := cloneDocument(doc)
	return &copied, nil
}

func (t *memoryTx) Insert(_ context.Context, doc *Document) error {
	key := docKey{doc.Type, doc.ID}
	if _, exists := t.docs[key]; exists {
		return &DuplicateError{Type: doc.Type, Field: "id"}
	}
	if err := t.checkUnique(doc); err != nil {
		return err
	}
	t.docs[key] = cloneDocument(*doc)
	return nil
}

func (t *memoryTx) Replace(_ context.Context, doc *Document, expectedVersion int64) error {
	key := docKey{doc.Type, doc.ID}
	current, ok := t.docs[key]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrStale
	}
	if err := t.checkUnique(doc); err != nil {
		return err
	}
	replaced := cloneDocument(*doc)
	replaced.CreatedAt = current.CreatedAt
	t.docs[key] = replaced
	return nil
}

func (t *memoryTx) Remove(_ context.Context, entityType domain.EntityType, id string) error {
	key := docKey{entityType, id}
	if _, ok := t.docs[key]; !ok {
		return ErrNotFound
	}
	delete(t.docs, key)
	return nil
}

func (t *memoryTx) AppendHistory(_ context.Context, entry *domain.HistoryEntry) error {
	var last *domain.HistoryEntry
	var count int64
	for _, list := range [][]domain.HistoryEntry{t.committed, t.pending} {
		for i := range list {
			if list[i].EntityType == entry.EntityType && list[i].EntityID == entry.EntityID {
				count++
				last = &list[i]
			}
		}
	}
	entry.Seq = count + 1
	if last != nil && entry.Timestamp.Before(last.Timestamp) {
		entry.Timestamp = last.Timestamp
	}
	t.pending = append(t.pending, *entry)
	return nil
}

func (t *memoryTx) checkUnique(doc *Document) error {
	fields := uniqueFields[doc.Type]
	if len(fields) == 0 {
		return nil
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	for key, other := range t.docs {
		if key.entityType != doc.Type || key.id == doc.ID {
			continue
		}
		var otherBody map[string]any
		if err := json.Unmarshal(other.Body, &otherBody); err != nil {
			return fmt.Errorf("decode document %s: %w", other.ID, err)
		}
		for _, field := range fields {
			value, ok := body[field]
			if !ok || value == nil || value == "" {
				continue
			}
			if reflect.DeepEqual(value, otherBody[field]) {
				return &DuplicateError{Type: doc.Type, Field: field}
			}
		}
	}
	return nil
}

func cloneDocument(doc Document) Document {
	doc.Body = append(json.RawMessage(nil), doc.Body...)
	return doc
}
