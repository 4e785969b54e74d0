package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
)

var errRedisDisabled = errors.New("status cache disabled")

// Redis holds the client behind the contact status cache.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the status cache client. An empty address returns nil.
// An unreachable server is logged but not fatal: the cache falls back to
// the store on every miss.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; status cache disabled")
		return nil
	}
	opts := redisOptions(cfg)
	fields := []zap.Field{
		zap.String("addr", opts.Addr),
		zap.Int("db", opts.DB),
		zap.Duration("status_ttl", cfg.StatusCacheTTL()),
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("status cache unreachable; reads go to the store", append(fields, zap.Error(err))...)
	} else {
		logger.Info("status cache connected", fields...)
	}
	return &Redis{Client: client}
}

func redisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "callcenter-status-cache",
	}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports whether the cache answers. A disabled cache is an error so
// readiness can tell it apart from a healthy one.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errRedisDisabled
	}
	return r.Client.Ping(ctx).Err()
}
