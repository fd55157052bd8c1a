package ports

import (
	"context"

	"github.com/handyapp/gateway/internal/core/domain/kv"
)

// CacheAsideService orchestrates reads and writes across the local cache and
// the remote store.
type CacheAsideService interface {
	// Write puts to the remote store and then always caches the value, even
	// when the remote put failed. A remote failure is still returned.
	Write(ctx context.Context, key, value string) error
	// Read answers from the cache when possible, otherwise from the remote
	// store without filling the cache. Misses and remote errors both yield
	// an apperr not_found.
	Read(ctx context.Context, key string) (*kv.ReadResult, error)
}
