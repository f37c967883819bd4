// Package cache stores intermediate pipeline results between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry expiry. Three
// backends are provided:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// Keys are produced by a [Keyer] so that every component derives the same key
// for the same graph and options. [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is the storage interface used by the pipeline runner.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes. Results depend only on the graph and options, so
// they are long-lived; the TTLs bound disk and memory growth.
const (
	TTLCoarsen   = 7 * 24 * time.Hour
	TTLPartition = 7 * 24 * time.Hour
)

// GetJSON decodes the entry under key into v. It returns [ErrCacheMiss] on a
// miss and also when the stored bytes no longer decode.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !hit {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
