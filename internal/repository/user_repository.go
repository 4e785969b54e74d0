package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// UserFilter selects users by role flag.
type UserFilter struct {
	IsTelephoniste *bool
	IsAdmin        *bool
	IsAgent        *bool
	Search         string
	Limit          int
	Offset         int
}

// UserRepository reads users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}

type userRepository struct {
	users collection[domain.User]
}

// NewUserRepository instantiates repository.
func NewUserRepository(store DocumentStore) UserRepository {
	return &userRepository{users: collection[domain.User]{store: store, entityType: domain.EntityUser}}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.users.get(ctx, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.users.first(ctx, map[string]any{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]*domain.User, error) {
	match := map[string]any{}
	if filter.IsTelephoniste != nil {
		match["isTelephoniste"] = *filter.IsTelephoniste
	}
	if filter.IsAdmin != nil {
		match["isAdmin"] = *filter.IsAdmin
	}
	if filter.IsAgent != nil {
		match["isAgent"] = *filter.IsAgent
	}
	return r.users.find(ctx, Filter{
		Match:        match,
		Search:       filter.Search,
		SearchFields: []string{"name", "email"},
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}
