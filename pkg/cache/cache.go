// Package cache stores computed layouts and rendered artifacts so repeated
// runs over an unchanged tree skip the work.
//
// Three backends share the [Cache] interface: [FileCache] for the CLI,
// [RedisCache] for a shared preview server, and [NullCache] when caching is
// disabled. Keys come from a [Keyer], which hashes the inputs that affect the
// cached value.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes for cached values.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLSource   = time.Hour
)
