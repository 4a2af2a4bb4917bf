package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Service on Redis so cached quotes and news survive
// restarts and are shared between replicas. It borrows the application's
// client pool rather than owning a connection.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client, opts ...RedisOption) *RedisCache {
	cfg := &RedisConfig{
		Prefix: "stockscribe:cache",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &RedisCache{client: client, prefix: cfg.Prefix}
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.wrapKey(key), data, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, c.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *RedisCache) wrapKey(key string) string {
	return c.prefix + ":" + key
}
