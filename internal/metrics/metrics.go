// Package metrics exposes the prometheus counters/histograms instrumenting
// the write path and search latency (SPEC_FULL.md §A/§C). Every metric is a
// package-level collector registered against the default registry, the
// idiomatic prometheus client pattern, and handlers record against it by
// calling the small helper functions below rather than importing
// prometheus directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicmap",
		Name:      "writes_total",
		Help:      "Total write-path operations, by entity and outcome.",
	}, []string{"entity", "outcome"})

	searchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "civicmap",
		Name:      "search_duration_seconds",
		Help:      "Latency of search index queries.",
		Buckets:   prometheus.DefBuckets,
	})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "civicmap",
		Name:      "notifications_total",
		Help:      "Outbound bbox-subscription notifications, by outcome.",
	}, []string{"outcome"})
)

// RecordWrite increments the write-path counter for entity ("place",
// "event", "rating", ...) and outcome ("ok", "error").
func RecordWrite(entity, outcome string) {
	writesTotal.WithLabelValues(entity, outcome).Inc()
}

// ObserveSearch records how long a search index query took.
func ObserveSearch(d time.Duration) {
	searchLatency.Observe(d.Seconds())
}

// RecordNotification increments the outbound notification counter.
func RecordNotification(outcome string) {
	notificationsTotal.WithLabelValues(outcome).Inc()
}
