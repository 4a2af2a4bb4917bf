// Package cache provides the result cache for generation runs: an in-memory
// TTL cache for single-instance deployments and a layered memory+Redis cache
// for multi-replica ones.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss reports a key that is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the cache API generation runs use for quotes and aggregated
// news. Values are JSON-marshaled on write and unmarshaled into dest on
// read, so every implementation behaves like the Redis layer.
type Service interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
}
