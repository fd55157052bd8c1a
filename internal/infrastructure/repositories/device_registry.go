package repositories

import (
	"sort"
	"sync"

	"github.com/handyapp/gateway/internal/core/domain/notification"
	"github.com/handyapp/gateway/internal/core/ports"
)

// DeviceRegistry is the in-process map of user identity to device handle.
// It is the only store of handles, so registrations are lost on restart.
type DeviceRegistry struct {
	mu      sync.RWMutex
	handles map[string]notification.DeviceHandle
}

func NewDeviceRegistry() *DeviceRegistry {
	return &DeviceRegistry{handles: make(map[string]notification.DeviceHandle)}
}

// Register upserts the handle. An identical token is a no-op; the user type
// is refreshed only alongside a token change.
func (r *DeviceRegistry) Register(handle notification.DeviceHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.handles[handle.UserIdentity]; ok && cur.Token == handle.Token {
		return false
	}
	r.handles[handle.UserIdentity] = handle
	return true
}

func (r *DeviceRegistry) Get(userIdentity string) (notification.DeviceHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[userIdentity]
	return h, ok
}

// Tokens returns the registered tokens ordered by user identity.
func (r *DeviceRegistry) Tokens() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		tokens = append(tokens, r.handles[id].Token)
	}
	r.mu.RUnlock()
	return tokens
}

func (r *DeviceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

var _ ports.DeviceRegistry = (*DeviceRegistry)(nil)
