package cache

import (
	"context"
	"time"
)

// LayeredCache implements a two-level cache (L1: memory, L2: Redis). Redis
// hits are promoted into memory with a short TTL so repeated reads on one
// replica stay local.
type LayeredCache struct {
	mem        *MemoryCache
	redis      *RedisCache
	promoteTTL time.Duration
}

// NewLayeredCache creates a layered cache over an existing Redis layer.
func NewLayeredCache(redisCache *RedisCache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		PromoteTTL:    time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &LayeredCache{
		mem:        NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		redis:      redisCache,
		promoteTTL: cfg.PromoteTTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	// Write-through: Redis first, then memory.
	if err := lc.redis.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, value, ttl)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.mem.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.redis.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.mem.Set(ctx, key, dest, lc.promoteTTL)
	return nil
}

// Close stops the memory layer. The Redis client is shared and stays open.
func (lc *LayeredCache) Close() error {
	return lc.mem.Close()
}
