package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// collection decodes documents of one entity type into T.
type collection[T any] struct {
	store      DocumentStore
	entityType domain.EntityType
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.entityType, id)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := doc.Decode(out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c.entityType, id, err)
	}
	return out, nil
}

func (c collection[T]) find(ctx context.Context, filter Filter) ([]*T, error) {
	docs, err := c.store.Find(ctx, c.entityType, filter)
	if err != nil {
		return nil, err
	}
	result := make([]*T, 0, len(docs))
	for i := range docs {
		out := new(T)
		if err := docs[i].Decode(out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", c.entityType, docs[i].ID, err)
		}
		result = append(result, out)
	}
	return result, nil
}

func (c collection[T]) first(ctx context.Context, match map[string]any) (*T, error) {
	found, err := c.find(ctx, Filter{Match: match, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found[0], nil
}

func (c collection[T]) count(ctx context.Context, filter Filter) (int, error) {
	return c.store.Count(ctx, c.entityType, filter)
}
