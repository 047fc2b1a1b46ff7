package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrCacheMiss is returned when the key is absent or caching is disabled.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache is a small read-cache wrapper around go-redis. A nil *RedisCache
// is valid and behaves as a disabled cache: every read misses, every write is
// a no-op. This lets deployments without Redis run unchanged.
type RedisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisCache connects to Redis at the given address. An empty address
// returns a nil cache, which disables caching.
func NewRedisCache(addr, password string, log zerolog.Logger) (*RedisCache, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Msg("Successfully connected to Redis cache")
	return &RedisCache{
		client: client,
		log:    log.With().Str("component", "redis_cache").Logger(),
	}, nil
}

// Get returns the cached payload for key, or ErrCacheMiss.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if r == nil {
		return nil, ErrCacheMiss
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value from cache: %w", err)
	}
	return val, nil
}

// Set stores the payload under key with the given expiry.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if r == nil {
		return nil
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key. Missing keys are not an error.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if r == nil || len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (r *RedisCache) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

// HealthCheck pings Redis. A disabled cache is always healthy.
func (r *RedisCache) HealthCheck(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}
