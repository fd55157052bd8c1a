package ports

import (
	"context"

	"github.com/handyapp/gateway/internal/core/domain/notification"
)

// NotificationChannel delivers one message to many device handles in a
// single batched call and reports per-handle outcomes. A non-nil error means
// the batch as a whole could not be attempted.
type NotificationChannel interface {
	Name() string
	SendToMany(ctx context.Context, tokens []string, msg notification.Message) ([]notification.DeliveryResult, error)
}

// DeviceRegistry maps user identities to device handles. One handle per identity.
type DeviceRegistry interface {
	// Register upserts the handle and reports whether the stored token changed.
	Register(handle notification.DeviceHandle) (changed bool)
	Get(userIdentity string) (notification.DeviceHandle, bool)
	// Tokens returns a snapshot of every registered token.
	Tokens() []string
	Len() int
}

// NotificationService registers devices and fans out broadcasts.
type NotificationService interface {
	RegisterDevice(ctx context.Context, req *notification.RegisterDeviceRequest) error
	// BroadcastNext selects the next canned message and dispatches it
	// asynchronously to every registered device.
	BroadcastNext(ctx context.Context) (*notification.Dispatch, error)
	// Close waits for in-flight dispatches.
	Close(ctx context.Context) error
}
