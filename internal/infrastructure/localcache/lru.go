package localcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/ports"
)

type entry struct {
	value    []byte
	expireAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// LRUCache implements ports.Cache as a bounded in-process mirror. A set is
// always admitted; when full, the least recently used key is evicted.
type LRUCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, entry]
	now    func() time.Time
	logger *logrus.Logger
}

type Config struct {
	MaxEntries int
}

func NewLRUCache(cfg Config, logger *logrus.Logger) (*LRUCache, error) {
	if cfg.MaxEntries <= 0 {
		return nil, errors.New("localcache: MaxEntries must be positive")
	}
	c := &LRUCache{now: time.Now, logger: logger}
	l, err := simplelru.NewLRU[string, entry](cfg.MaxEntries, c.onEvict)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

func (c *LRUCache) onEvict(key string, _ entry) {
	if c.logger != nil {
		c.logger.WithField("key", key).Debug("local cache entry evicted")
	}
}

// Get implements Cache.Get. Expired entries are dropped, never returned.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache.Set. A non-positive ttl keeps the entry until evicted.
func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// Copy so callers cannot mutate a cached entry.
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expireAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.lru.Add(key, e)
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.Delete.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	c.lru.Remove(key)
	c.mu.Unlock()
	return nil
}

func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

var _ ports.Cache = (*LRUCache)(nil)
