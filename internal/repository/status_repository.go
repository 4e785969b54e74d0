package repository

import (
	"context"
	"sort"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// StatusRepository reads the contact status table through a cache.
type StatusRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ContactStatus, error)
	GetByCode(ctx context.Context, code string) (*domain.ContactStatus, error)
	List(ctx context.Context) ([]*domain.ContactStatus, error)
	// Table returns statuses keyed by id.
	Table(ctx context.Context) (map[string]*domain.ContactStatus, error)
	Invalidate(ctx context.Context)
}

type statusRepository struct {
	statuses collection[domain.ContactStatus]
	cache    StatusCache
}

// NewStatusRepository instantiates repository. A nil cache disables caching.
func NewStatusRepository(store DocumentStore, cache StatusCache) StatusRepository {
	if cache == nil {
		cache = NoopStatusCache{}
	}
	return &statusRepository{
		statuses: collection[domain.ContactStatus]{store: store, entityType: domain.EntityContactStatus},
		cache:    cache,
	}
}

func (r *statusRepository) GetByID(ctx context.Context, id string) (*domain.ContactStatus, error) {
	table, err := r.Table(ctx)
	if err != nil {
		return nil, err
	}
	status, ok := table[id]
	if !ok {
		return nil, ErrNotFound
	}
	return status, nil
}

func (r *statusRepository) GetByCode(ctx context.Context, code string) (*domain.ContactStatus, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

// List returns every status ordered by ascending order, then name.
func (r *statusRepository) List(ctx context.Context) ([]*domain.ContactStatus, error) {
	if cached, ok := r.cache.Get(ctx); ok {
		return cached, nil
	}
	list, err := r.statuses.find(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].Name < list[j].Name
	})
	r.cache.Set(ctx, list)
	return list, nil
}

func (r *statusRepository) Table(ctx context.Context) (map[string]*domain.ContactStatus, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	table := make(map[string]*domain.ContactStatus, len(list))
	for _, s := range list {
		table[s.ID] = s
	}
	return table, nil
}

func (r *statusRepository) Invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx)
}
