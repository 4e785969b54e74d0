package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// BulkResult tallies a bulk operation. Failures do not abort the batch.
type BulkResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

func (r *BulkResult) fail(msg string) {
	r.Failed++
	r.Errors = append(r.Errors, msg)
}

// AssignmentService handles contact assignment to telephonistes.
type AssignmentService struct {
	contacts   repository.ContactRepository
	users      repository.UserRepository
	engine     *history.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	ContactRepo repository.ContactRepository
	UserRepo    repository.UserRepository
	Engine      *history.Engine
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	s := &AssignmentService{
		contacts:   deps.ContactRepo,
		users:      deps.UserRepo,
		engine:     deps.Engine,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// BulkAssign gives every listed contact to telephonisteID. Contacts
// already owned by someone else are moved.
func (s *AssignmentService) BulkAssign(ctx context.Context, p *auth.Principal, contactIDs []string, telephonisteID string) (*BulkResult, error) {
	if len(contactIDs) == 0 {
		return nil, apperrors.NewValidationError("contactIds must not be empty", nil)
	}
	tel, err := s.users.GetByID(ctx, telephonisteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewPersistenceError(err)
	}
	if err != nil || !tel.IsTelephoniste {
		return nil, apperrors.NewValidationError("invalid telephoniste id", map[string]any{"telephonisteId": telephonisteID})
	}

	result := &BulkResult{Errors: []string{}}
	for _, id := range contactIDs {
		contact, err := s.contacts.GetByID(ctx, id)
		if err != nil {
			result.fail(s.loadFailure(id, err))
			continue
		}
		action := domain.AssignmentAssigned
		if contact.AssignedToTelephonisteID != nil {
			action = domain.AssignmentMoved
		}
		if err := s.reassign(ctx, p, contact, action, &tel.ID); err != nil {
			result.fail(fmt.Sprintf("Failed to assign contact %s: %v", id, err))
			continue
		}
		result.Succeeded++
	}

	s.logger.Info("bulk assignment",
		zap.String("telephoniste_id", tel.ID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))
	s.publish(ctx, p, domain.AssignmentAssigned, &tel.ID, result)
	return result, nil
}

// BulkUnassign releases every listed contact back to the unassigned pool.
func (s *AssignmentService) BulkUnassign(ctx context.Context, p *auth.Principal, contactIDs []string) (*BulkResult, error) {
	if len(contactIDs) == 0 {
		return nil, apperrors.NewValidationError("contactIds must not be empty", nil)
	}

	result := &BulkResult{Errors: []string{}}
	for _, id := range contactIDs {
		contact, err := s.contacts.GetByID(ctx, id)
		if err != nil {
			result.fail(s.loadFailure(id, err))
			continue
		}
		if contact.AssignedToTelephonisteID == nil {
			result.fail(fmt.Sprintf("Contact %s is not assigned", id))
			continue
		}
		if err := s.reassign(ctx, p, contact, domain.AssignmentUnassigned, nil); err != nil {
			result.fail(fmt.Sprintf("Failed to unassign contact %s: %v", id, err))
			continue
		}
		result.Succeeded++
	}

	s.logger.Info("bulk unassignment", zap.Int("succeeded", result.Succeeded), zap.Int("failed", result.Failed))
	s.publish(ctx, p, domain.AssignmentUnassigned, nil, result)
	return result, nil
}

// loadFailure keeps a missing contact apart from a store failure in the tally.
func (s *AssignmentService) loadFailure(id string, err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Sprintf("Contact %s not found", id)
	}
	s.logger.Error("load contact for assignment", zap.String("contact_id", id), zap.Error(err))
	return fmt.Sprintf("Failed to load contact %s: %v", id, err)
}

func (s *AssignmentService) reassign(ctx context.Context, p *auth.Principal, contact *domain.Contact, action domain.AssignmentAction, to *string) error {
	log := append(append([]domain.AssignmentChange{}, contact.AssignmentHistory...), domain.AssignmentChange{
		Action:     action,
		FromUserID: contact.AssignedToTelephonisteID,
		ToUserID:   to,
		AssignedBy: userIDPtr(p),
		AssignedAt: s.now().UTC(),
	})
	_, err := s.engine.Update(ctx, p.Actor(), contact, map[string]any{
		"assignedToTelephonisteId": to,
		"assignmentHistory":        log,
	})
	return err
}

func (s *AssignmentService) publish(ctx context.Context, p *auth.Principal, action domain.AssignmentAction, to *string, result *BulkResult) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventBulkAssignment,
		EntityType: domain.EntityContact,
		Actor:      actorOf(p),
		Timestamp:  s.now().UTC(),
		Payload: events.BulkAssignmentPayload{
			Action:         action,
			TelephonisteID: to,
			Succeeded:      result.Succeeded,
			Failed:         result.Failed,
		},
	})
}
