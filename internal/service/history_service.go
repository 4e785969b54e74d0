package service

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// HistoryService exposes audit reads with access control.
type HistoryService struct {
	reader *history.Reader
}

// NewHistoryService constructs the service.
func NewHistoryService(reader *history.Reader) *HistoryService {
	return &HistoryService{reader: reader}
}

// ForDocument returns the history of one record. model is the entity type
// name used in URLs.
func (s *HistoryService) ForDocument(ctx context.Context, p *auth.Principal, model, id string, q history.Query) ([]domain.HistoryEntry, error) {
	entityType, ok := domain.ParseEntityType(model)
	if !ok {
		return nil, apperrors.NewValidationError("unknown model", map[string]any{"model": model})
	}
	if !p.HasAdminPermission(auth.PermHistoryView) {
		return nil, apperrors.NewForbidden("missing permission")
	}
	return s.reader.ForDocument(ctx, entityType, id, q)
}

// ForActor returns the changes made by actorID. Users may read their own.
func (s *HistoryService) ForActor(ctx context.Context, p *auth.Principal, actorID string, q history.Query) ([]domain.HistoryEntry, error) {
	if actorID != p.UserID() && !p.HasAdminPermission(auth.PermHistoryView) {
		return nil, apperrors.NewForbidden("missing permission")
	}
	return s.reader.ForActor(ctx, actorID, q)
}

// Recent returns the activity feed across every entity type.
func (s *HistoryService) Recent(ctx context.Context, p *auth.Principal, q history.RecentQuery) ([]domain.HistoryEntry, error) {
	if !p.HasAdminPermission(auth.PermHistoryView) {
		return nil, apperrors.NewForbidden("missing permission")
	}
	return s.reader.Recent(ctx, q)
}
