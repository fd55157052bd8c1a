package ports

import (
	"context"
	"time"
)

// Cache defines the local key-value mirror consulted before the remote store.
// Entries must never be returned after their TTL elapses. Implementations are
// treated as infallible by callers: errors are logged, never surfaced.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
