package repository

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// ReservationRepository reads reservations.
type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*domain.Reservation, error)
	ListByContact(ctx context.Context, contactID string) ([]*domain.Reservation, error)
}

type reservationRepository struct {
	reservations collection[domain.Reservation]
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(store DocumentStore) ReservationRepository {
	return &reservationRepository{reservations: collection[domain.Reservation]{store: store, entityType: domain.EntityReservation}}
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.reservations.get(ctx, id)
}

func (r *reservationRepository) ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*domain.Reservation, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.reservations.find(ctx, Filter{
		Match:  map[string]any{"assignedToAgentId": agentID},
		Limit:  limit,
		Offset: offset,
	})
}

func (r *reservationRepository) ListByContact(ctx context.Context, contactID string) ([]*domain.Reservation, error) {
	return r.reservations.find(ctx, Filter{Match: map[string]any{"contactId": contactID}})
}
