package ports

import (
	"context"
	"time"
)

// Cache is the raw key/value store behind the feed caches and the backend's
// read-through repository. Values are opaque JSON bytes.
type Cache interface {
	// Get returns ok=false if key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key; ttl <= 0 keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
