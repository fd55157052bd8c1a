// Package metrics holds the domain collectors of the serving tier. HTTP
// request metrics live with the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Local cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	remoteCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_store_calls_total",
			Help: "Remote store calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	remoteCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remote_store_call_duration_seconds",
			Help:    "Remote store call latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	directoryPartialWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_partial_writes_total",
			Help: "Service registrations where exactly one of the two writes failed",
		},
	)

	notificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Per-handle notification deliveries by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(cacheLookups)
	prometheus.MustRegister(remoteCalls)
	prometheus.MustRegister(remoteCallDuration)
	prometheus.MustRegister(directoryPartialWrites)
	prometheus.MustRegister(notificationDeliveries)
}

func CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// RemoteCall records one remote store call. outcome is "ok", "not_found",
// "timeout" or "error".
func RemoteCall(op, outcome string, elapsed time.Duration) {
	remoteCalls.WithLabelValues(op, outcome).Inc()
	remoteCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func DirectoryPartialWrite() {
	directoryPartialWrites.Inc()
}

func NotificationDeliveries(channel string, delivered, failed int) {
	if delivered > 0 {
		notificationDeliveries.WithLabelValues(channel, "delivered").Add(float64(delivered))
	}
	if failed > 0 {
		notificationDeliveries.WithLabelValues(channel, "failed").Add(float64(failed))
	}
}
