package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-triage-dashboard/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a Redis implementation of the CacheRepository interface.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
}

type redisEntry struct {
	Spam      core.SpamLabel `json:"spam"`
	Category  string         `json:"category"`
	Urgency   string         `json:"urgency"`
	ModelUsed string         `json:"model_used"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// NewRedisCache creates a new Redis cache and checks the connection
func NewRedisCache(ctx context.Context, addr, password string, db int, prefix string, logger *zap.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(rdb, prefix, logger), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(rdb *redis.Client, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		rdb:    rdb,
		prefix: prefix,
		logger: logger,
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a cached prediction by key
func (c *RedisCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var stored redisEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	return &core.CacheEntry{
		Key:       key,
		Spam:      stored.Spam,
		Category:  stored.Category,
		Urgency:   stored.Urgency,
		ModelUsed: stored.ModelUsed,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Set stores a cache entry with a TTL matching its expiry
func (c *RedisCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	raw, err := json.Marshal(redisEntry{
		Spam:      entry.Spam,
		Category:  entry.Category,
		Urgency:   entry.Urgency,
		ModelUsed: entry.ModelUsed,
		CreatedAt: entry.CreatedAt,
		ExpiresAt: entry.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.rdb.Set(ctx, c.key(entry.Key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires keys on its own
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis client
func (c *RedisCache) Stop() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("Failed to close Redis client", zap.Error(err))
	}
}
