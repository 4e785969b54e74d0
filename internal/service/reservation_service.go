package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// ReservationService serves field agents and admins.
type ReservationService struct {
	reservations repository.ReservationRepository
	engine       *history.Engine
	now          func() time.Time
}

// ReservationDependencies bundles collaborators.
type ReservationDependencies struct {
	ReservationRepo repository.ReservationRepository
	Engine          *history.Engine
	Now             func() time.Time
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ReservationService{reservations: deps.ReservationRepo, engine: deps.Engine, now: now}
}

// Get returns a reservation visible to the caller.
func (s *ReservationService) Get(ctx context.Context, p *auth.Principal, id string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("reservation", id, err)
	}
	if !s.canView(p, res) {
		return nil, apperrors.NewForbidden("reservation not accessible")
	}
	return res, nil
}

// ListMine returns the caller's own reservations by date.
func (s *ReservationService) ListMine(ctx context.Context, p *auth.Principal, limit, offset int) ([]*domain.Reservation, error) {
	if !p.HasAgentPermission(auth.PermAgentReservationsViewOwn) {
		return nil, apperrors.NewForbidden("missing permission")
	}
	list, err := s.reservations.ListByAgent(ctx, p.UserID(), limit, offset)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// ListByAgent returns the reservations booked for agentID.
func (s *ReservationService) ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*domain.Reservation, error) {
	list, err := s.reservations.ListByAgent(ctx, agentID, limit, offset)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// UpdateStatus moves a reservation through its lifecycle.
func (s *ReservationService) UpdateStatus(ctx context.Context, p *auth.Principal, id string, status domain.ReservationStatus) (*domain.Reservation, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid reservation status", map[string]any{"status": status})
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("reservation", id, err)
	}
	if !p.HasAdminPermission(auth.PermReservationsEdit) &&
		!(res.AssignedToAgentID == p.UserID() && p.HasAgentPermission(auth.PermAgentReservationsEditOwn)) {
		return nil, apperrors.NewForbidden("reservation not editable")
	}
	if _, err := s.engine.Update(ctx, p.Actor(), res, map[string]any{"status": status}); err != nil {
		return nil, err
	}
	return res, nil
}

// AddNote appends a note to the reservation.
func (s *ReservationService) AddNote(ctx context.Context, p *auth.Principal, id, content string) (*domain.Reservation, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("note content is required", nil)
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("reservation", id, err)
	}
	if !p.HasAdminPermission(auth.PermReservationsEdit) &&
		!(res.AssignedToAgentID == p.UserID() && p.HasAgentPermission(auth.PermAgentReservationsNotes)) {
		return nil, apperrors.NewForbidden("reservation not editable")
	}
	notes := append(append([]domain.Note{}, res.Notes...), domain.Note{
		Content:   content,
		CreatedBy: userIDPtr(p),
		CreatedAt: s.now().UTC(),
	})
	if _, err := s.engine.Update(ctx, p.Actor(), res, map[string]any{"notes": notes}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ReservationService) canView(p *auth.Principal, res *domain.Reservation) bool {
	if p.HasAdminPermission(auth.PermReservationsView) {
		return true
	}
	return res.AssignedToAgentID == p.UserID() && p.HasAgentPermission(auth.PermAgentReservationsViewOwn)
}
