package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// EngineDependencies groups engine collaborators.
type EngineDependencies struct {
	Store           repository.DocumentStore
	Validator       *validator.Validate
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	CaptureMetadata bool
	Now             func() time.Time
}

// Engine persists trackable records and appends exactly one history entry
// per committed create, effective update or delete, in the same transaction.
type Engine struct {
	store           repository.DocumentStore
	validate        *validator.Validate
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	captureMetadata bool
	now             func() time.Time
}

// NewEngine builds an Engine.
func NewEngine(deps EngineDependencies) *Engine {
	e := &Engine{
		store:           deps.Store,
		validate:        deps.Validator,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		captureMetadata: deps.CaptureMetadata,
		now:             deps.Now,
	}
	if e.validate == nil {
		e.validate = domain.NewValidator()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Create assigns an id, stamps tracking fields and stores rec with its
// create entry.
func (e *Engine) Create(ctx context.Context, actor ActorContext, rec domain.Record) error {
	tr := rec.Tracked()
	prev := *tr
	now := e.now().UTC()

	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	tr.CreatedAt, tr.UpdatedAt = now, now
	tr.CreatedBy, tr.UpdatedBy = actor.ActorID, actor.ActorID
	tr.Version = 1

	if err := e.validate.Struct(rec); err != nil {
		*tr = prev
		return apperrors.NewValidationError(fmt.Sprintf("invalid %s", rec.Kind()), domain.ValidationDetails(err))
	}

	body, err := json.Marshal(rec)
	if err != nil {
		*tr = prev
		return apperrors.NewInternalError(err)
	}
	snapshot, err := toMap(body)
	if err != nil {
		*tr = prev
		return apperrors.NewInternalError(err)
	}

	entry := e.newEntry(actor, rec, domain.ActionCreate, now)
	entry.InitialDocument = redact(rec, snapshot)

	doc := &repository.Document{
		Type:      rec.Kind(),
		ID:        tr.ID,
		Version:   tr.Version,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = e.store.InTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.Insert(ctx, doc); err != nil {
			return err
		}
		return tx.AppendHistory(ctx, entry)
	})
	if err != nil {
		*tr = prev
		return e.mapStoreError(rec.Kind(), doc.ID, err)
	}

	e.recorded(ctx, actor, entry)
	return nil
}

// Update applies fieldUpdates (top-level json field name to new value) onto
// rec, writes it, and appends one update entry listing the fields whose
// value actually changed. No entry is appended when nothing changed. On
// failure rec is restored to its state before the call.
func (e *Engine) Update(ctx context.Context, actor ActorContext, rec domain.Record, fieldUpdates map[string]any) ([]domain.FieldChange, error) {
	known := jsonFields(rec)
	for field := range fieldUpdates {
		if protectedFields[field] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("field %s cannot be updated", field), map[string]any{"field": field})
		}
		if !known[field] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown field %s", field), map[string]any{"field": field})
		}
	}

	beforeBody, err := json.Marshal(rec)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	before, err := toMap(beforeBody)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	restore := func() {
		if err := load(rec, beforeBody); err != nil {
			e.logger.Error("restore record", zap.String("entity_type", string(rec.Kind())), zap.Error(err))
		}
	}

	merged := make(map[string]any, len(before)+len(fieldUpdates))
	for k, v := range before {
		merged[k] = v
	}
	for k, v := range fieldUpdates {
		merged[k] = v
	}
	mergedBody, err := json.Marshal(merged)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid field value", map[string]any{"error": err.Error()})
	}
	if err := load(rec, mergedBody); err != nil {
		restore()
		return nil, apperrors.NewValidationError("invalid field value", map[string]any{"error": err.Error()})
	}

	after, err := toMap(rec)
	if err != nil {
		restore()
		return nil, apperrors.NewInternalError(err)
	}
	changes := diff(rec, before, after, fieldUpdates)

	tr := rec.Tracked()
	now := e.now().UTC()
	expected := tr.Version
	tr.UpdatedAt = now
	tr.UpdatedBy = actor.ActorID
	tr.Version = expected + 1

	if err := e.validate.Struct(rec); err != nil {
		restore()
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid %s", rec.Kind()), domain.ValidationDetails(err))
	}

	body, err := json.Marshal(rec)
	if err != nil {
		restore()
		return nil, apperrors.NewInternalError(err)
	}
	doc := &repository.Document{Type: rec.Kind(), ID: tr.ID, Version: tr.Version, Body: body, UpdatedAt: now}

	var entry *domain.HistoryEntry
	if len(changes) > 0 {
		entry = e.newEntry(actor, rec, domain.ActionUpdate, now)
		entry.Changes = changes
	}

	err = e.store.InTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.Replace(ctx, doc, expected); err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		return tx.AppendHistory(ctx, entry)
	})
	if err != nil {
		restore()
		return nil, e.mapStoreError(rec.Kind(), doc.ID, err)
	}

	if entry != nil {
		e.recorded(ctx, actor, entry)
	}
	return changes, nil
}

// Delete appends the delete entry holding the stored pre-delete snapshot
// and removes the document, atomically.
func (e *Engine) Delete(ctx context.Context, actor ActorContext, rec domain.Record) error {
	tr := rec.Tracked()
	now := e.now().UTC()
	entry := e.newEntry(actor, rec, domain.ActionDelete, now)

	err := e.store.InTransaction(ctx, func(tx repository.Tx) error {
		current, err := tx.Get(ctx, rec.Kind(), tr.ID)
		if err != nil {
			return err
		}
		snapshot, err := toMap([]byte(current.Body))
		if err != nil {
			return err
		}
		entry.DeletedDocument = redact(rec, snapshot)
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return err
		}
		return tx.Remove(ctx, rec.Kind(), tr.ID)
	})
	if err != nil {
		return e.mapStoreError(rec.Kind(), tr.ID, err)
	}

	e.recorded(ctx, actor, entry)
	return nil
}

func (e *Engine) newEntry(actor ActorContext, rec domain.Record, action domain.HistoryAction, at time.Time) *domain.HistoryEntry {
	entry := &domain.HistoryEntry{
		EntityType:   rec.Kind(),
		EntityID:     rec.Tracked().ID,
		Action:       action,
		Timestamp:    at,
		UserID:       actor.ActorID,
		UserSnapshot: actor.Snapshot,
	}
	if e.captureMetadata && actor.Metadata != nil {
		entry.Metadata = actor.Metadata
	}
	return entry
}

// diff compares the requested fields under structural equality.
func diff(rec domain.Record, before, after map[string]any, requested map[string]any) []domain.FieldChange {
	fields := make([]string, 0, len(requested))
	for field := range requested {
		if !diffExcluded[field] {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	secret := redactedSet(rec)
	var changes []domain.FieldChange
	for _, field := range fields {
		oldValue, newValue := before[field], after[field]
		if reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		if secret[field] {
			oldValue, newValue = redactedValue, redactedValue
		}
		changes = append(changes, domain.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
	}
	return changes
}

func (e *Engine) mapStoreError(entityType domain.EntityType, id string, err error) error {
	var domainErr *apperrors.DomainError
	var dup *repository.DuplicateError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.As(err, &dup):
		return apperrors.NewValidationError(
			fmt.Sprintf("%s with this %s already exists", singular(entityType), dup.Field),
			map[string]any{"field": dup.Field},
		)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(singular(entityType), map[string]any{"id": id})
	case errors.Is(err, repository.ErrStale):
		return apperrors.NewConflict(fmt.Sprintf("%s was modified concurrently", singular(entityType)), map[string]any{"id": id})
	default:
		e.logger.Error("history store failure",
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", id),
			zap.Error(err))
		return apperrors.NewPersistenceError(err)
	}
}

func (e *Engine) recorded(ctx context.Context, actor ActorContext, entry *domain.HistoryEntry) {
	e.logger.Debug("history recorded",
		zap.String("entity_type", string(entry.EntityType)),
		zap.String("entity_id", entry.EntityID),
		zap.String("action", string(entry.Action)),
		zap.Int64("seq", entry.Seq),
		zap.Bool("system", actor.IsSystem()))

	if e.dispatcher == nil {
		return
	}
	evt := events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventHistoryRecorded,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Actor:      events.Actor{UserID: actor.ActorID},
		Timestamp:  entry.Timestamp,
		Payload:    *entry,
	}
	if actor.Snapshot != nil {
		evt.Actor.Name = actor.Snapshot.Name
	}
	_ = e.dispatcher.Publish(ctx, evt)
}

// singular turns "contact_statuses" into "contact status".
func singular(entityType domain.EntityType) string {
	name := strings.ReplaceAll(string(entityType), "_", " ")
	switch {
	case strings.HasSuffix(name, "ses"):
		return strings.TrimSuffix(name, "es")
	case strings.HasSuffix(name, "s"):
		return strings.TrimSuffix(name, "s")
	}
	return name
}
