package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Synchronization Prometheus metrics.
var (
	BulkFlushesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "bulk_flushes_total",
			Help:      "Total number of bulk submissions",
		},
		[]string{"index", "status"},
	)

	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "bulk_items_total",
			Help:      "Total number of bulk items submitted",
		},
		[]string{"index", "action"},
	)

	BulkFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "bulk_flush_duration_seconds",
			Help:      "Bulk submission duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"index"},
	)

	SyncRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "sync_records_total",
			Help:      "Records processed by full synchronization",
		},
		[]string{"type", "status"}, // "indexed" / "failed"
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchsync",
			Name:      "sync_duration_seconds",
			Help:      "Full synchronization duration per type in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
		[]string{"type"},
	)

	HookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "hook_events_total",
			Help:      "Mutation hook events by outcome",
		},
		[]string{"op", "status"},
	)

	SearchLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchsync",
			Name:      "search_lookups_total",
			Help:      "Search hit resolutions by outcome",
		},
		[]string{"type", "result"}, // "found" / "not_found" / "unknown_type" / "error"
	)
)

var registerOnce sync.Once

// RegisterSyncMetrics registers the synchronization metrics. Safe to call more than once.
func RegisterSyncMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			BulkFlushesTotal,
			BulkItemsTotal,
			BulkFlushDuration,
			SyncRecordsTotal,
			SyncDuration,
			HookEventsTotal,
			SearchLookupsTotal,
		)
	})
}
