package remotestore

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/metrics"
)

const (
	opPut                = "put"
	opGet                = "get"
	opPutService         = "put_service"
	opGetServiceProvider = "get_service_provider"
)

// InstrumentedStore bounds every call to the wrapped store with a deadline,
// records metrics and converts failures into apperr remote_unavailable
// errors. Calls are never retried.
type InstrumentedStore struct {
	next    ports.RemoteStore
	timeout time.Duration
	logger  *logrus.Logger
}

func NewInstrumentedStore(next ports.RemoteStore, timeout time.Duration, logger *logrus.Logger) *InstrumentedStore {
	return &InstrumentedStore{next: next, timeout: timeout, logger: logger}
}

func (s *InstrumentedStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// observe records the call and returns err translated to an apperr.
func (s *InstrumentedStore) observe(ctx context.Context, op, key string, start time.Time, found bool, err error) error {
	elapsed := time.Since(start)
	outcome := "ok"
	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	case !found:
		outcome = "not_found"
	}
	metrics.RemoteCall(op, outcome, elapsed)

	if err == nil {
		return nil
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"op":       op,
			"key":      key,
			"outcome":  outcome,
			"duration": elapsed.String(),
		}).WithError(err).Warn("remote store call failed")
	}
	if outcome == "timeout" {
		return apperr.RemoteUnavailable("remote store call timed out", err)
	}
	return apperr.RemoteUnavailable("remote store call failed", err)
}

func (s *InstrumentedStore) Put(ctx context.Context, key, value string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	err := s.next.Put(ctx, key, value)
	return s.observe(ctx, opPut, key, start, true, err)
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	if err = s.observe(ctx, opGet, key, start, found, err); err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (s *InstrumentedStore) PutService(ctx context.Context, key, value string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	err := s.next.PutService(ctx, key, value)
	return s.observe(ctx, opPutService, key, start, true, err)
}

func (s *InstrumentedStore) GetServiceProvider(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	start := time.Now()
	payload, found, err := s.next.GetServiceProvider(ctx, serviceType, location)
	if err = s.observe(ctx, opGetServiceProvider, serviceType, start, found, err); err != nil {
		return nil, false, err
	}
	return payload, found, nil
}

var _ ports.RemoteStore = (*InstrumentedStore)(nil)
