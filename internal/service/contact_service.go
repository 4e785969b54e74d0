package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// ContactService coordinates contact workflows.
type ContactService struct {
	contacts   repository.ContactRepository
	statuses   repository.StatusRepository
	users      repository.UserRepository
	profiles   repository.AgentProfileRepository
	engine     *history.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ContactDependencies bundles collaborators for the contact service.
type ContactDependencies struct {
	ContactRepo      repository.ContactRepository
	StatusRepo       repository.StatusRepository
	UserRepo         repository.UserRepository
	AgentProfileRepo repository.AgentProfileRepository
	Engine           *history.Engine
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Now              func() time.Time
}

// NewContactService constructs the service.
func NewContactService(deps ContactDependencies) *ContactService {
	s := &ContactService{
		contacts:   deps.ContactRepo,
		statuses:   deps.StatusRepo,
		users:      deps.UserRepo,
		profiles:   deps.AgentProfileRepo,
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

// ContactCreateInput describes contact creation payload.
type ContactCreateInput struct {
	Phone                    string
	Name                     string
	Email                    string
	Address                  string
	PostalCode               string
	City                     string
	StatusID                 *string
	AssignedToTelephonisteID *string
}

// ContactUpdateInput lists the editable fields. Nil means unchanged.
type ContactUpdateInput struct {
	Name       *string
	Email      *string
	Address    *string
	PostalCode *string
	City       *string
}

// ContactListFilter describes admin listing filters.
type ContactListFilter struct {
	StatusID    *string
	AssignedTo  *string
	Unassigned  bool
	IsConverted *bool
	Search      string
	Limit       int
	Offset      int
}

// LogCallInput describes one call to record.
type LogCallInput struct {
	CallSid   string
	Direction domain.CallDirection
	Duration  int
	Status    string
}

// ConvertInput describes a conversion into a reservation.
type ConvertInput struct {
	Date              time.Time
	AssignedToAgentID string
	Note              string
}

// Create validates and stores a new contact in the default status.
func (s *ContactService) Create(ctx context.Context, p *auth.Principal, input ContactCreateInput) (*domain.Contact, error) {
	phone := domain.NormalizePhone(input.Phone)
	if len(phone) != 10 {
		return nil, apperrors.NewValidationError("phone must contain 10 digits", map[string]any{"phone": input.Phone})
	}
	if _, err := s.contacts.GetByPhone(ctx, phone); err == nil {
		return nil, apperrors.NewValidationError("contact with this phone already exists", map[string]any{"phone": phone})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewPersistenceError(err)
	}

	postal := strings.TrimSpace(input.PostalCode)
	if postal != "" {
		if !domain.IsValidPostalCode(postal) {
			return nil, apperrors.NewValidationError("invalid postal code", map[string]any{"postalCode": postal})
		}
		postal = domain.NormalizePostalCode(postal)
	}

	status, err := s.resolveStatus(ctx, input.StatusID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	actorID := userIDPtr(p)
	contact := domain.NewContact(phone)
	contact.Name = strings.TrimSpace(input.Name)
	contact.Email = strings.ToLower(strings.TrimSpace(input.Email))
	contact.Address = strings.TrimSpace(input.Address)
	contact.PostalCode = postal
	contact.City = strings.TrimSpace(input.City)
	contact.StatusID = &status.ID
	contact.StatusHistory = append(contact.StatusHistory, domain.StatusChange{
		StatusID:  status.ID,
		UpdatedBy: actorID,
		UpdatedAt: now,
		Note:      "Contact created",
	})

	if input.AssignedToTelephonisteID != nil && *input.AssignedToTelephonisteID != "" {
		tel, err := s.requireTelephoniste(ctx, *input.AssignedToTelephonisteID)
		if err != nil {
			return nil, err
		}
		contact.AssignedToTelephonisteID = &tel.ID
		contact.AssignmentHistory = append(contact.AssignmentHistory, domain.AssignmentChange{
			Action:     domain.AssignmentAssigned,
			ToUserID:   &tel.ID,
			AssignedBy: actorID,
			AssignedAt: now,
		})
	}

	if err := s.engine.Create(ctx, p.Actor(), contact); err != nil {
		return nil, err
	}
	s.logger.Info("contact created", zap.String("contact_id", contact.ID), zap.String("actor_id", p.UserID()))
	return contact, nil
}

// Get returns a contact visible to the caller.
func (s *ContactService) Get(ctx context.Context, p *auth.Principal, id string) (*domain.Contact, error) {
	contact, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasAdminPermission(auth.PermContactsView) && !p.CanWorkContact(contact) {
		return nil, apperrors.NewForbidden("contact not accessible")
	}
	return contact, nil
}

// List returns a page of contacts and the total match count.
func (s *ContactService) List(ctx context.Context, filter ContactListFilter) ([]*domain.Contact, int, error) {
	contacts, total, err := s.contacts.ListWithFilter(ctx, repository.ContactFilter{
		StatusID:    filter.StatusID,
		AssignedTo:  filter.AssignedTo,
		Unassigned:  filter.Unassigned,
		IsConverted: filter.IsConverted,
		Search:      filter.Search,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.NewPersistenceError(err)
	}
	return contacts, total, nil
}

// Update edits the descriptive fields. Phone, status, assignment,
// conversion and logs are changed only through their dedicated operations.
func (s *ContactService) Update(ctx context.Context, p *auth.Principal, id string, input ContactUpdateInput) (*domain.Contact, error) {
	contact, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if v := trimmed(input.Name); v != nil {
		updates["name"] = *v
	}
	if v := trimmed(input.Email); v != nil {
		updates["email"] = strings.ToLower(*v)
	}
	if v := trimmed(input.Address); v != nil {
		updates["address"] = *v
	}
	if v := trimmed(input.City); v != nil {
		updates["city"] = *v
	}
	if v := trimmed(input.PostalCode); v != nil {
		if *v != "" && !domain.IsValidPostalCode(*v) {
			return nil, apperrors.NewValidationError("invalid postal code", map[string]any{"postalCode": *v})
		}
		updates["postalCode"] = domain.NormalizePostalCode(*v)
	}

	if _, err := s.engine.Update(ctx, p.Actor(), contact, updates); err != nil {
		return nil, err
	}
	return contact, nil
}

// Delete removes a contact. Its history stays queryable.
func (s *ContactService) Delete(ctx context.Context, p *auth.Principal, id string) error {
	contact, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if contact.IsConverted {
		return apperrors.NewValidationError("converted contacts cannot be deleted", map[string]any{"id": id})
	}
	if err := s.engine.Delete(ctx, p.Actor(), contact); err != nil {
		return err
	}
	s.logger.Info("contact deleted", zap.String("contact_id", id), zap.String("actor_id", p.UserID()))
	return nil
}

// UpdateStatus moves the contact to statusID and logs the change.
func (s *ContactService) UpdateStatus(ctx context.Context, p *auth.Principal, id, statusID, note string) (*domain.Contact, error) {
	contact, err := s.loadWorkable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if statusID == "" {
		return nil, apperrors.NewValidationError("status id is required", nil)
	}
	status, err := s.statuses.GetByID(ctx, statusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("invalid status id", map[string]any{"statusId": statusID})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	if status.Code == domain.StatusCodeConverted {
		return nil, apperrors.NewValidationError("use the conversion endpoint to convert a contact", map[string]any{"statusId": statusID})
	}

	statusHistory := append(append([]domain.StatusChange{}, contact.StatusHistory...), domain.StatusChange{
		StatusID:  status.ID,
		UpdatedBy: userIDPtr(p),
		UpdatedAt: s.now().UTC(),
		Note:      strings.TrimSpace(note),
	})
	if _, err := s.engine.Update(ctx, p.Actor(), contact, map[string]any{
		"statusId":      status.ID,
		"statusHistory": statusHistory,
	}); err != nil {
		return nil, err
	}
	return contact, nil
}

// LogCall appends a call entry attributed to the caller.
func (s *ContactService) LogCall(ctx context.Context, p *auth.Principal, id string, input LogCallInput) (*domain.Contact, error) {
	contact, err := s.loadWorkable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	input.CallSid = strings.TrimSpace(input.CallSid)
	input.Status = strings.TrimSpace(input.Status)
	if input.CallSid == "" || input.Status == "" {
		return nil, apperrors.NewValidationError("callSid and status are required", nil)
	}
	if input.Direction == "" {
		input.Direction = domain.CallOutbound
	}
	if input.Direction != domain.CallOutbound && input.Direction != domain.CallInbound {
		return nil, apperrors.NewValidationError("invalid call direction", map[string]any{"direction": input.Direction})
	}
	if input.Duration < 0 {
		return nil, apperrors.NewValidationError("duration cannot be negative", nil)
	}

	calls := append(append([]domain.CallLogEntry{}, contact.CallHistory...), domain.CallLogEntry{
		CallSid:   input.CallSid,
		Direction: input.Direction,
		Duration:  input.Duration,
		Status:    input.Status,
		CalledBy:  userIDPtr(p),
		CalledAt:  s.now().UTC(),
	})
	if _, err := s.engine.Update(ctx, p.Actor(), contact, map[string]any{"callHistory": calls}); err != nil {
		return nil, err
	}
	return contact, nil
}

// AddNote appends a free-text note.
func (s *ContactService) AddNote(ctx context.Context, p *auth.Principal, id, content string) (*domain.Contact, error) {
	contact, err := s.loadWorkable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("note content is required", nil)
	}
	notes := append(append([]domain.Note{}, contact.Notes...), domain.Note{
		Content:   content,
		CreatedBy: userIDPtr(p),
		CreatedAt: s.now().UTC(),
	})
	if _, err := s.engine.Update(ctx, p.Actor(), contact, map[string]any{"notes": notes}); err != nil {
		return nil, err
	}
	return contact, nil
}

// Convert books a reservation for the contact and marks it converted.
// A contact converts at most once.
func (s *ContactService) Convert(ctx context.Context, p *auth.Principal, id string, input ConvertInput) (*domain.Contact, *domain.Reservation, error) {
	contact, err := s.loadWorkable(ctx, p, id)
	if err != nil {
		return nil, nil, err
	}
	if contact.IsConverted {
		return nil, nil, apperrors.NewValidationError("contact already converted", map[string]any{"reservationId": contact.ReservationID})
	}
	if input.Date.IsZero() {
		return nil, nil, apperrors.NewValidationError("reservation date is required", nil)
	}
	if input.AssignedToAgentID == "" {
		return nil, nil, apperrors.NewValidationError("agent id is required", nil)
	}
	if _, err := s.profiles.GetByUserID(ctx, input.AssignedToAgentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewValidationError("agent profile not found", map[string]any{"assignedToAgentId": input.AssignedToAgentID})
		}
		return nil, nil, apperrors.NewPersistenceError(err)
	}
	converted, err := s.statuses.GetByCode(ctx, domain.StatusCodeConverted)
	if err != nil {
		return nil, nil, loadError("contact status", domain.StatusCodeConverted, err)
	}

	now := s.now().UTC()
	actorID := userIDPtr(p)
	reservation := &domain.Reservation{
		ContactID:         contact.ID,
		Date:              input.Date.UTC(),
		AssignedToAgentID: input.AssignedToAgentID,
		Status:            domain.ReservationScheduled,
		CustomerInfo:      domain.FreezeCustomerInfo(contact),
		Notes:             []domain.Note{},
	}
	if note := strings.TrimSpace(input.Note); note != "" {
		reservation.Notes = append(reservation.Notes, domain.Note{Content: note, CreatedBy: actorID, CreatedAt: now})
	}
	if err := s.engine.Create(ctx, p.Actor(), reservation); err != nil {
		return nil, nil, err
	}

	statusHistory := append(append([]domain.StatusChange{}, contact.StatusHistory...), domain.StatusChange{
		StatusID:  converted.ID,
		UpdatedBy: actorID,
		UpdatedAt: now,
		Note:      "Converted to reservation",
	})
	_, err = s.engine.Update(ctx, p.Actor(), contact, map[string]any{
		"statusId":      converted.ID,
		"statusHistory": statusHistory,
		"isConverted":   true,
		"convertedBy":   actorID,
		"convertedAt":   now,
		"reservationId": reservation.ID,
	})
	if err != nil {
		if delErr := s.engine.Delete(ctx, p.Actor(), reservation); delErr != nil {
			s.logger.Error("rollback reservation after failed conversion",
				zap.String("reservation_id", reservation.ID), zap.Error(delErr))
		}
		return nil, nil, err
	}

	s.logger.Info("contact converted",
		zap.String("contact_id", contact.ID),
		zap.String("reservation_id", reservation.ID),
		zap.String("agent_id", reservation.AssignedToAgentID))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventContactConverted,
		EntityType: domain.EntityContact,
		EntityID:   contact.ID,
		Actor:      actorOf(p),
		Timestamp:  now,
		Payload: events.ContactConvertedPayload{
			ReservationID: reservation.ID,
			AgentID:       reservation.AssignedToAgentID,
			Date:          reservation.Date,
		},
	})
	return contact, reservation, nil
}

func (s *ContactService) load(ctx context.Context, id string) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("contact", id, err)
	}
	return contact, nil
}

func (s *ContactService) loadWorkable(ctx context.Context, p *auth.Principal, id string) (*domain.Contact, error) {
	contact, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanWorkContact(contact) {
		return nil, apperrors.NewForbidden("contact is not assigned to you")
	}
	return contact, nil
}

func (s *ContactService) resolveStatus(ctx context.Context, statusID *string) (*domain.ContactStatus, error) {
	if statusID != nil && *statusID != "" {
		status, err := s.statuses.GetByID(ctx, *statusID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("invalid status id", map[string]any{"statusId": *statusID})
			}
			return nil, apperrors.NewPersistenceError(err)
		}
		if status.Code == domain.StatusCodeConverted {
			return nil, apperrors.NewValidationError("contacts cannot be created converted", nil)
		}
		return status, nil
	}
	status, err := s.statuses.GetByCode(ctx, domain.StatusCodeNew)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("default status %q is missing", domain.StatusCodeNew), nil)
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	return status, nil
}

func (s *ContactService) requireTelephoniste(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewValidationError("invalid telephoniste id", map[string]any{"telephonisteId": id})
		}
		return nil, apperrors.NewPersistenceError(err)
	}
	if !user.IsTelephoniste {
		return nil, apperrors.NewValidationError("invalid telephoniste id", map[string]any{"telephonisteId": id})
	}
	return user, nil
}
