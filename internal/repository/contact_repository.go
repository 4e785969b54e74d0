package repository

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// ContactFilter captures admin search parameters.
type ContactFilter struct {
	StatusID    *string
	AssignedTo  *string
	Unassigned  bool
	IsConverted *bool
	Search      string
	Limit       int
	Offset      int
}

// ContactRepository reads contacts. Writes go through the history engine.
type ContactRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Contact, error)
	ListWithFilter(ctx context.Context, filter ContactFilter) ([]*domain.Contact, int, error)
	ListAssignedTo(ctx context.Context, telephonisteID string) ([]*domain.Contact, error)
	CountWithStatus(ctx context.Context, statusID string) (int, error)
}

type contactRepository struct {
	contacts collection[domain.Contact]
}

// NewContactRepository instantiates repository.
func NewContactRepository(store DocumentStore) ContactRepository {
	return &contactRepository{contacts: collection[domain.Contact]{store: store, entityType: domain.EntityContact}}
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	return r.contacts.get(ctx, id)
}

func (r *contactRepository) GetByPhone(ctx context.Context, phone string) (*domain.Contact, error) {
	return r.contacts.first(ctx, map[string]any{"phone": phone})
}

func (r *contactRepository) ListWithFilter(ctx context.Context, filter ContactFilter) ([]*domain.Contact, int, error) {
	match := map[string]any{}
	if filter.StatusID != nil {
		match["statusId"] = *filter.StatusID
	}
	if filter.Unassigned {
		match["assignedToTelephonisteId"] = nil
	} else if filter.AssignedTo != nil {
		match["assignedToTelephonisteId"] = *filter.AssignedTo
	}
	if filter.IsConverted != nil {
		match["isConverted"] = *filter.IsConverted
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := Filter{
		Match:        match,
		Search:       filter.Search,
		SearchFields: []string{"name", "phone", "email", "city"},
	}
	total, err := r.contacts.count(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	query.Limit, query.Offset = limit, offset
	contacts, err := r.contacts.find(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *contactRepository) ListAssignedTo(ctx context.Context, telephonisteID string) ([]*domain.Contact, error) {
	return r.contacts.find(ctx, Filter{Match: map[string]any{"assignedToTelephonisteId": telephonisteID}})
}

func (r *contactRepository) CountWithStatus(ctx context.Context, statusID string) (int, error) {
	return r.contacts.count(ctx, Filter{Match: map[string]any{"statusId": statusID}})
}
