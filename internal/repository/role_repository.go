package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// RoleRepository reads permission roles.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByCode(ctx context.Context, code string) (*domain.Role, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Role, error)
	List(ctx context.Context, actor domain.RoleActor) ([]*domain.Role, error)
}

type roleRepository struct {
	roles collection[domain.Role]
}

// NewRoleRepository instantiates repository.
func NewRoleRepository(store DocumentStore) RoleRepository {
	return &roleRepository{roles: collection[domain.Role]{store: store, entityType: domain.EntityRole}}
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.roles.get(ctx, id)
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	return r.roles.first(ctx, map[string]any{"code": code})
}

// ListByIDs skips ids that no longer resolve to a role.
func (r *roleRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Role, error) {
	roles := make([]*domain.Role, 0, len(ids))
	for _, id := range ids {
		role, err := r.roles.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *roleRepository) List(ctx context.Context, actor domain.RoleActor) ([]*domain.Role, error) {
	match := map[string]any{}
	if actor != "" {
		match["actor"] = string(actor)
	}
	return r.roles.find(ctx, Filter{Match: match})
}
