package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

const statusCacheKey = "callcenter:contact_statuses"

// StatusCache holds the status table read on every queue request.
// Cache failures degrade to a miss.
type StatusCache interface {
	Get(ctx context.Context) ([]*domain.ContactStatus, bool)
	Set(ctx context.Context, statuses []*domain.ContactStatus)
	Invalidate(ctx context.Context)
}

// NoopStatusCache never caches.
type NoopStatusCache struct{}

func (NoopStatusCache) Get(context.Context) ([]*domain.ContactStatus, bool) { return nil, false }
func (NoopStatusCache) Set(context.Context, []*domain.ContactStatus)        {}
func (NoopStatusCache) Invalidate(context.Context)                          {}

type redisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatusCache stores the status table as one JSON value.
func NewRedisStatusCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) StatusCache {
	if client == nil {
		return NoopStatusCache{}
	}
	return &redisStatusCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisStatusCache) Get(ctx context.Context) ([]*domain.ContactStatus, bool) {
	raw, err := c.client.Get(ctx, statusCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("status cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var statuses []*domain.ContactStatus
	if err := json.Unmarshal(raw, &statuses); err != nil {
		c.logger.Warn("status cache decode failed", zap.Error(err))
		return nil, false
	}
	return statuses, true
}

func (c *redisStatusCache) Set(ctx context.Context, statuses []*domain.ContactStatus) {
	raw, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write failed", zap.Error(err))
	}
}

func (c *redisStatusCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, statusCacheKey).Err(); err != nil {
		c.logger.Warn("status cache invalidate failed", zap.Error(err))
	}
}
