package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amirasaad/tem/pkg/cache"
	"github.com/amirasaad/tem/pkg/provider"
)

// RedisRateCache implements HistoricalRateCache using Redis.
type RedisRateCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisRateCache creates a cache from a redis:// URL.
func NewRedisRateCache(url, prefix string, logger *slog.Logger) (*RedisRateCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisRateCacheWithOptions(opt, prefix, logger), nil
}

// NewRedisRateCacheWithOptions creates a new RedisRateCache
// from redis.Options.
func NewRedisRateCacheWithOptions(
	opt *redis.Options,
	prefix string,
	logger *slog.Logger,
) *RedisRateCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRateCache{client: redis.NewClient(opt), prefix: prefix, logger: logger}
}

func (r *RedisRateCache) key(key string) string {
	return r.prefix + key
}

// Ping checks the connection.
func (r *RedisRateCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRateCache) Get(ctx context.Context, key string) (*provider.RateInfo, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return nil, err
	}
	var rate provider.RateInfo
	if err := json.Unmarshal([]byte(val), &rate); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("Redis cache hit", "key", key, "rate", rate.Rate.String())
	return &rate, nil
}

func (r *RedisRateCache) Set(
	ctx context.Context,
	key string,
	rate *provider.RateInfo,
	ttl time.Duration,
) error {
	data, err := json.Marshal(rate)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", key, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "rate", rate.Rate.String(), "ttl", ttl)
	return nil
}

func (r *RedisRateCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "key", key)
	return nil
}

// Close releases the client connection pool.
func (r *RedisRateCache) Close() error {
	return r.client.Close()
}

var _ cache.HistoricalRateCache = (*RedisRateCache)(nil)
