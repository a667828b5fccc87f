package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is the shared cache backend. Values are JSON-marshalled, so what
// comes back from Get carries JSON types, not the exact Go types that went
// in. Backend errors are logged and counted but never surfaced: a broken
// cache degrades to a miss.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis creates a Redis store with a fixed per-entry TTL. Expiry is
// delegated to Redis via the Set deadline.
func NewRedis(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get loads the entry cached under key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return false
		}
		CacheErrors.WithLabelValues("get").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry")
		return false
	}

	CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value under key with the store's TTL.
func (r *Redis) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("marshal cache entry failed")
		return
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		r.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Clear drops all entries in the selected Redis database.
func (r *Redis) Clear(ctx context.Context) {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		r.logger.Warn().Err(err).Msg("redis flush failed")
	}
}
