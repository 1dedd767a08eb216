// Package cache provides byte-level caching for fetched graphs and
// simplification results.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives stable keys from the inputs that determine an entry:
// the bounding box and build options for a fetched graph, and the graph hash
// plus transform options for a result. [ScopedKeyer] prefixes every key, for
// example to separate data fetched from different OSM endpoints.
//
// Cache failures are never fatal to callers: a failed Get should be treated
// as a miss and a failed Set ignored after logging.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/roadnet/pkg/observability"
)

// Default entry lifetimes.
const (
	// GraphTTL bounds how long a downloaded road graph is reused. OSM data
	// changes slowly, so a week is acceptable.
	GraphTTL = 7 * 24 * time.Hour

	// ResultTTL bounds how long a simplified graph is reused.
	ResultTTL = 24 * time.Hour
)

// Key types reported to the cache hooks.
const (
	KeyTypeGraph  = "graph"
	KeyTypeResult = "result"
)

// Cache stores opaque byte slices under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// GetJSON looks up key and decodes the entry into v. It reports whether v
// was filled and emits a hit or miss event for keyType. Undecodable entries
// are deleted and reported as misses.
func GetJSON(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
