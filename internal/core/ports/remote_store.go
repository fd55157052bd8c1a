package ports

import "context"

// RemoteStore is the proxy to the partitioned key-value store that is the
// durable source of truth. Calls may fail and are never retried by the tier;
// callers bound them with a context deadline.
type RemoteStore interface {
	// Put stores a generic key/value pair.
	Put(ctx context.Context, key, value string) error
	// Get returns found=false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// PutService writes into the service keyspace (type index or detail blob).
	PutService(ctx context.Context, key, value string) error
	// GetServiceProvider resolves type -> id -> detail blob and matches the
	// location on the remote side. It returns a JSON document carrying a
	// numeric "status" field, or found=false when no payload was produced.
	GetServiceProvider(ctx context.Context, serviceType, location string) (payload []byte, found bool, err error)
}
