package mocks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handyapp/gateway/internal/core/domain/notification"
)

// RemoteStoreMock is a lightweight mock for ports.RemoteStore that also
// counts calls per operation.
type RemoteStoreMock struct {
	PutFn                func(ctx context.Context, key, value string) error
	GetFn                func(ctx context.Context, key string) (string, bool, error)
	PutServiceFn         func(ctx context.Context, key, value string) error
	GetServiceProviderFn func(ctx context.Context, serviceType, location string) ([]byte, bool, error)

	PutCalls                atomic.Int32
	GetCalls                atomic.Int32
	PutServiceCalls         atomic.Int32
	GetServiceProviderCalls atomic.Int32
}

func (m *RemoteStoreMock) Put(ctx context.Context, key, value string) error {
	m.PutCalls.Add(1)
	if m.PutFn != nil {
		return m.PutFn(ctx, key, value)
	}
	return nil
}
func (m *RemoteStoreMock) Get(ctx context.Context, key string) (string, bool, error) {
	m.GetCalls.Add(1)
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return "", false, nil
}
func (m *RemoteStoreMock) PutService(ctx context.Context, key, value string) error {
	m.PutServiceCalls.Add(1)
	if m.PutServiceFn != nil {
		return m.PutServiceFn(ctx, key, value)
	}
	return nil
}
func (m *RemoteStoreMock) GetServiceProvider(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
	m.GetServiceProviderCalls.Add(1)
	if m.GetServiceProviderFn != nil {
		return m.GetServiceProviderFn(ctx, serviceType, location)
	}
	return nil, false, nil
}

// CacheMock is an in-memory ports.Cache that honours TTLs and lets tests
// override individual calls.
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error

	mu      sync.Mutex
	entries map[string]cacheEntry
	// LastTTL is the ttl passed to the most recent Set.
	LastTTL time.Duration
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewCacheMock() *CacheMock {
	return &CacheMock{entries: map[string]cacheEntry{}}
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !time.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.LastTTL = ttl
	m.mu.Unlock()
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = map[string]cacheEntry{}
	}
	e := cacheEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Peek returns the stored value without TTL checks.
func (m *CacheMock) Peek(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return string(e.value), ok
}

// NotificationChannelMock records every batch it is asked to send.
type NotificationChannelMock struct {
	NameValue    string
	SendToManyFn func(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error)

	mu      sync.Mutex
	Batches []SentBatch
}

type SentBatch struct {
	Tokens  []string
	Message notification.Message
}

func (m *NotificationChannelMock) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}
func (m *NotificationChannelMock) SendToMany(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error) {
	m.mu.Lock()
	m.Batches = append(m.Batches, SentBatch{Tokens: append([]string(nil), tokens...), Message: msg})
	m.mu.Unlock()
	if m.SendToManyFn != nil {
		return m.SendToManyFn(ctx, tokens, msg)
	}
	out := make([]notification.DeliveryResult, len(tokens))
	for i, tok := range tokens {
		out[i] = notification.DeliveryResult{Token: tok, OK: true}
	}
	return out, nil
}

// Sent returns a copy of the recorded batches.
func (m *NotificationChannelMock) Sent() []SentBatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentBatch(nil), m.Batches...)
}

// RateLimitRepositoryMock is a lightweight mock for ports.RateLimitRepository.
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, clientKey, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}
