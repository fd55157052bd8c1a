package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/handyapp/gateway/internal/core/ports"
)

// SharedCache implements ports.Cache on Redis so that several replicas of the
// tier share one cache. Entries expire through native key TTLs.
type SharedCache struct {
	r      redis.Cmdable
	prefix string
}

func NewSharedCache(r redis.Cmdable, prefix string) *SharedCache {
	return &SharedCache{r: r, prefix: prefix}
}

func (c *SharedCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get implements Cache.Get.
func (c *SharedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.Set.
func (c *SharedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.r.Set(ctx, c.namespaced(key), value, ttl).Err()
}

// Delete implements Cache.Delete.
func (c *SharedCache) Delete(ctx context.Context, key string) error {
	return c.r.Del(ctx, c.namespaced(key)).Err()
}

var _ ports.Cache = (*SharedCache)(nil)
