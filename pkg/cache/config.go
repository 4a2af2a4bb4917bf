package cache

import "time"

// RedisOption configures the Redis layer.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis layer configuration.
type RedisConfig struct {
	Prefix string
}

// WithRedisPrefix sets the key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// MemoryOption configures the memory cache.
type MemoryOption func(*MemoryConfig)

// MemoryConfig holds memory cache configuration.
type MemoryConfig struct {
	MaxSize         int
	CleanupInterval time.Duration
}

// WithMemoryMaxSize sets the entry bound.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		c.MaxSize = size
	}
}

// WithMemoryCleanup sets the expiry sweep interval.
func WithMemoryCleanup(interval time.Duration) MemoryOption {
	return func(c *MemoryConfig) {
		c.CleanupInterval = interval
	}
}

// LayeredOption configures the layered cache.
type LayeredOption func(*LayeredConfig)

// LayeredConfig holds layered cache configuration.
type LayeredConfig struct {
	MemoryMaxSize int
	PromoteTTL    time.Duration
}

// WithLayeredMemorySize sets the L1 entry bound.
func WithLayeredMemorySize(size int) LayeredOption {
	return func(c *LayeredConfig) {
		c.MemoryMaxSize = size
	}
}

// WithPromoteTTL sets how long Redis hits live in L1.
func WithPromoteTTL(ttl time.Duration) LayeredOption {
	return func(c *LayeredConfig) {
		c.PromoteTTL = ttl
	}
}
