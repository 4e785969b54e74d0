package repository

import (
	"context"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// AgentProfileRepository reads field-agent profiles.
type AgentProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AgentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.AgentProfile, error)
	List(ctx context.Context) ([]*domain.AgentProfile, error)
}

type agentProfileRepository struct {
	profiles collection[domain.AgentProfile]
}

// NewAgentProfileRepository instantiates repository.
func NewAgentProfileRepository(store DocumentStore) AgentProfileRepository {
	return &agentProfileRepository{profiles: collection[domain.AgentProfile]{store: store, entityType: domain.EntityAgentProfile}}
}

func (r *agentProfileRepository) GetByID(ctx context.Context, id string) (*domain.AgentProfile, error) {
	return r.profiles.get(ctx, id)
}

func (r *agentProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.AgentProfile, error) {
	return r.profiles.first(ctx, map[string]any{"userId": userID})
}

func (r *agentProfileRepository) List(ctx context.Context) ([]*domain.AgentProfile, error) {
	return r.profiles.find(ctx, Filter{})
}
