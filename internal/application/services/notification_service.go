package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/notification"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/metrics"
)

const defaultDispatchTimeout = 10 * time.Second

// NotificationService owns the broadcast counter and fans canned messages
// out to every registered device through one channel.
type NotificationService struct {
	registry ports.DeviceRegistry
	channel  ports.NotificationChannel
	timeout  time.Duration
	logger   *logrus.Logger

	mu      sync.Mutex
	counter uint64
	closed  bool

	inflight sync.WaitGroup
}

func NewNotificationService(registry ports.DeviceRegistry, channel ports.NotificationChannel, dispatchTimeout time.Duration, logger *logrus.Logger) *NotificationService {
	if dispatchTimeout <= 0 {
		dispatchTimeout = defaultDispatchTimeout
	}
	return &NotificationService{registry: registry, channel: channel, timeout: dispatchTimeout, logger: logger}
}

func (s *NotificationService) RegisterDevice(ctx context.Context, req *notification.RegisterDeviceRequest) error {
	if req == nil || strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Token) == "" {
		return apperr.Validation("username and new_push_device_token are required")
	}
	changed := s.registry.Register(notification.DeviceHandle{
		UserIdentity: req.Username,
		UserType:     req.UserType,
		Token:        req.Token,
	})
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"username": req.Username, "changed": changed}).Debug("device registered")
	}
	return nil
}

// BroadcastNext picks the message for the current counter, snapshots the
// recipients and advances the counter, all under one lock, so concurrent
// callers each get a distinct rotation slot. Delivery runs in the background;
// the returned Dispatch yields its report once the channel has answered.
func (s *NotificationService) BroadcastNext(ctx context.Context) (*notification.Dispatch, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperr.Internal("notification service is shutting down", nil)
	}
	msg := notification.MessageAt(s.counter)
	tokens := s.registry.Tokens()
	s.counter++
	s.inflight.Add(1)
	s.mu.Unlock()

	done := make(chan notification.DispatchReport, 1)
	go s.dispatch(msg, tokens, done)

	return &notification.Dispatch{Message: msg, Recipients: len(tokens), Done: done}, nil
}

func (s *NotificationService) dispatch(msg notification.Message, tokens []string, done chan<- notification.DispatchReport) {
	defer s.inflight.Done()
	defer close(done)

	report := notification.DispatchReport{Message: msg, Channel: s.channel.Name()}
	if len(tokens) == 0 {
		done <- report
		return
	}

	// Detached from the request: the caller may have returned already.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	results, err := s.channel.SendToMany(ctx, tokens, msg)
	if err != nil {
		report.Error = err.Error()
		results = make([]notification.DeliveryResult, len(tokens))
		for i, tok := range tokens {
			results[i] = notification.DeliveryResult{Token: tok, Error: err.Error()}
		}
	}
	report.Results = results
	report.Tally()
	metrics.NotificationDeliveries(report.Channel, report.Delivered, report.Failed)

	if s.logger != nil {
		entry := s.logger.WithFields(logrus.Fields{
			"channel":   report.Channel,
			"body":      msg.Body,
			"delivered": report.Delivered,
			"failed":    report.Failed,
		})
		if err != nil {
			entry.WithError(err).Warn("broadcast failed")
		} else {
			entry.Info("broadcast dispatched")
		}
	}
	done <- report
}

// Close stops accepting broadcasts and waits for in-flight ones, or for ctx.
func (s *NotificationService) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(waited)
	}()
	select {
	case <-waited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ports.NotificationService = (*NotificationService)(nil)
