package cache

import (
	"context"
	"time"
)

// Cache is the storage behind the query client. Values are JSON encoded so
// the in-memory and Redis implementations behave the same way.
type Cache interface {
	// Get decodes the value stored under key into dest.
	// found=false on a miss, dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern ("q:books:*").
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}
