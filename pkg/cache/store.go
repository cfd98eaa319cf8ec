// Package cache provides the key/value stores behind the catalog snapshot cache:
// Redis for shared deployments and an in-process LRU for single nodes.
package cache

import (
	"context"
	"time"
)

// Store is the minimal expiring key/value contract used by the snapshot cache
// and the stampede guard. Get returns "" with a nil error on a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX writes only when key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete removes keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)
}
