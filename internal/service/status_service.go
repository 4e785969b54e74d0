package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// StatusService manages the contact status table.
type StatusService struct {
	statuses repository.StatusRepository
	contacts repository.ContactRepository
	engine   *history.Engine
	logger   *zap.Logger
}

// StatusDependencies bundles collaborators for the status service.
type StatusDependencies struct {
	StatusRepo  repository.StatusRepository
	ContactRepo repository.ContactRepository
	Engine      *history.Engine
	Logger      *zap.Logger
}

// NewStatusService constructs the service.
func NewStatusService(deps StatusDependencies) *StatusService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusService{statuses: deps.StatusRepo, contacts: deps.ContactRepo, engine: deps.Engine, logger: logger}
}

// StatusInput is the create payload.
type StatusInput struct {
	Name                string
	Code                string
	Color               string
	Order               int
	ExcludeFromCallList bool
}

// StatusUpdateInput lists editable status fields. Nil means unchanged.
type StatusUpdateInput struct {
	Name                *string
	Color               *string
	Order               *int
	ExcludeFromCallList *bool
}

// List returns every status by display order.
func (s *StatusService) List(ctx context.Context) ([]*domain.ContactStatus, error) {
	list, err := s.statuses.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// Get returns one status.
func (s *StatusService) Get(ctx context.Context, id string) (*domain.ContactStatus, error) {
	status, err := s.statuses.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("contact status", id, err)
	}
	return status, nil
}

// Create adds a deletable custom status.
func (s *StatusService) Create(ctx context.Context, p *auth.Principal, input StatusInput) (*domain.ContactStatus, error) {
	status := &domain.ContactStatus{
		Name:                strings.TrimSpace(input.Name),
		Code:                strings.ToLower(strings.TrimSpace(input.Code)),
		Color:               strings.TrimSpace(input.Color),
		Order:               input.Order,
		ExcludeFromCallList: input.ExcludeFromCallList,
		IsDeletable:         true,
	}
	if err := s.engine.Create(ctx, p.Actor(), status); err != nil {
		return nil, err
	}
	s.statuses.Invalidate(ctx)
	return status, nil
}

// Update edits a status. The code of a system status never changes.
func (s *StatusService) Update(ctx context.Context, p *auth.Principal, id string, input StatusUpdateInput) (*domain.ContactStatus, error) {
	status, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if v := trimmed(input.Name); v != nil {
		updates["name"] = *v
	}
	if v := trimmed(input.Color); v != nil {
		updates["color"] = *v
	}
	if input.Order != nil {
		updates["order"] = *input.Order
	}
	if input.ExcludeFromCallList != nil {
		if status.Code == domain.StatusCodeConverted && !*input.ExcludeFromCallList {
			return nil, apperrors.NewValidationError("converted status must stay excluded from the call list", nil)
		}
		updates["excludeFromCallList"] = *input.ExcludeFromCallList
	}
	if _, err := s.engine.Update(ctx, p.Actor(), status, updates); err != nil {
		return nil, err
	}
	s.statuses.Invalidate(ctx)
	return status, nil
}

// Delete removes a custom status no contact uses.
func (s *StatusService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	status, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !status.CanDelete() {
		return apperrors.NewValidationError("this status cannot be deleted", map[string]any{"code": status.Code})
	}
	inUse, err := s.contacts.CountWithStatus(ctx, id)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	if inUse > 0 {
		return apperrors.NewValidationError("status is used by contacts", map[string]any{"contacts": inUse})
	}
	if err := s.engine.Delete(ctx, p.Actor(), status); err != nil {
		return err
	}
	s.statuses.Invalidate(ctx)
	return nil
}

// SeedDefaults inserts the default statuses missing by code. It returns
// how many were created.
func (s *StatusService) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, status := range domain.DefaultStatuses() {
		_, err := s.statuses.GetByCode(ctx, status.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return created, apperrors.NewPersistenceError(err)
		}
		if err := s.engine.Create(ctx, history.SystemActor(), status); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.statuses.Invalidate(ctx)
		s.logger.Info("seeded contact statuses", zap.Int("created", created))
	}
	return created, nil
}
