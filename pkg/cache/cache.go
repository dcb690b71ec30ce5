// Package cache stores compiled graphs keyed by a hash of their input.
//
// The [Cache] interface is a byte store with per-entry TTL. Four backends
// implement it:
//
//   - [NullCache]: stores nothing (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for `jsontree serve`
//   - [MongoCache]: shared cache in a MongoDB collection with a TTL index
//
// Keys come from a [Keyer] so that every backend agrees on the key layout:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.GraphKey(cache.Hash(input), cache.GraphKeyOpts{Theme: "dark"})
//	// graph:3f9a...
//
// Backend calls that fail for transient reasons are wrapped with [Retryable]
// and retried by [RetryWithBackoff].
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with expiring entries. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
