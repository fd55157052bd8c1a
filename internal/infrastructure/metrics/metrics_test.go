package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	CacheLookup(true)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))

	calls := testutil.ToFloat64(remoteCalls.WithLabelValues("put", "timeout"))
	RemoteCall("put", "timeout", 10*time.Millisecond)
	assert.Equal(t, calls+1, testutil.ToFloat64(remoteCalls.WithLabelValues("put", "timeout")))

	partial := testutil.ToFloat64(directoryPartialWrites)
	DirectoryPartialWrite()
	assert.Equal(t, partial+1, testutil.ToFloat64(directoryPartialWrites))

	failed := testutil.ToFloat64(notificationDeliveries.WithLabelValues("log", "failed"))
	NotificationDeliveries("log", 2, 3)
	assert.Equal(t, failed+3, testutil.ToFloat64(notificationDeliveries.WithLabelValues("log", "failed")))
}
