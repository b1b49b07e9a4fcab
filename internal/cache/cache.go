// Package cache stores short lived string values, either in process or in Redis.
package cache

import (
	"context"
	"time"
)

// Cache is a string key/value store with per-key expiry. Get returns "" for a
// missing or expired key.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}
