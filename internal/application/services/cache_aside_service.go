package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/kv"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/metrics"
)

// DefaultCacheTTL is how long a written value stays in the local cache.
const DefaultCacheTTL = 120 * time.Second

type remoteRead struct {
	value string
	found bool
}

// CacheAsideService reads through the local cache and writes through the
// remote store. Reads never populate the cache; only writes do.
type CacheAsideService struct {
	remote ports.RemoteStore
	cache  ports.Cache
	ttl    time.Duration
	sf     singleflight.Group
	logger *logrus.Logger
}

func NewCacheAsideService(remote ports.RemoteStore, cache ports.Cache, ttl time.Duration, logger *logrus.Logger) *CacheAsideService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheAsideService{remote: remote, cache: cache, ttl: ttl, logger: logger}
}

// Write puts to the remote store and then caches the value whatever the
// outcome of the put. A failed put is still returned to the caller. An empty
// value is stored as is; rejecting a missing value is the caller's job.
func (s *CacheAsideService) Write(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return apperr.Validation("key is required")
	}

	remoteErr := s.remote.Put(ctx, key, value)

	if err := s.cache.Set(ctx, key, []byte(value), s.ttl); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("local cache set failed")
	}

	if remoteErr != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(remoteErr).Warn("remote put failed, value cached locally")
		}
		if apperr.As(remoteErr) == nil {
			return apperr.RemoteUnavailable("remote put failed", remoteErr)
		}
		return remoteErr
	}
	return nil
}

// Read answers from the cache, falling back to one remote get. Concurrent
// misses on the same key share a single remote call, which runs detached from
// any one caller's cancellation and is bounded by the store's own timeout.
// Each caller still stops waiting when its own context ends. Remote failures
// are reported as not found.
func (s *CacheAsideService) Read(ctx context.Context, key string) (*kv.ReadResult, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperr.Validation("key is required")
	}

	b, ok, err := s.cache.Get(ctx, key)
	if err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("local cache get failed")
	}
	if err == nil && ok {
		metrics.CacheLookup(true)
		return &kv.ReadResult{Key: key, Value: string(b), Source: kv.SourceCache}, nil
	}
	metrics.CacheLookup(false)

	shared := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (any, error) {
		value, found, err := s.remote.Get(shared, key)
		if err != nil {
			return nil, err
		}
		return remoteRead{value: value, found: found}, nil
	})

	var res any
	select {
	case r := <-ch:
		res, err = r.Val, r.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"key": key}).WithError(err).Warn("remote get failed, reporting not found")
		}
		return nil, apperr.NotFound("key not found")
	}
	rr := res.(remoteRead)
	if !rr.found {
		return nil, apperr.NotFound("key not found")
	}
	return &kv.ReadResult{Key: key, Value: rr.value, Source: kv.SourceRemote}, nil
}

var _ ports.CacheAsideService = (*CacheAsideService)(nil)
