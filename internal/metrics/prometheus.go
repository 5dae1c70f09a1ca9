package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync worker

var (
	// Upstream provider metrics
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_upstream_calls_total",
			Help: "Total number of upstream provider calls",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchsync_upstream_call_duration_seconds",
			Help:    "Duration of upstream provider calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Quota metrics
	QuotaUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchsync_quota_used",
			Help: "Calls consumed in the current rolling window",
		},
		[]string{"counter"},
	)

	QuotaRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matchsync_quota_remaining",
			Help: "Calls remaining in the current rolling window",
		},
		[]string{"counter"},
	)

	QuotaDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_quota_denied_total",
			Help: "Calls denied because the window ceiling was reached",
		},
		[]string{"counter"},
	)

	// Response cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchsync_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchsync_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// Sync metrics
	RowsUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_rows_upserted_total",
			Help: "Entity rows written to the store",
		},
		[]string{"entity"},
	)

	RowsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_rows_skipped_total",
			Help: "Entity rows skipped during batch sync",
		},
		[]string{"entity", "reason"},
	)

	// Scheduler metrics
	TaskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_task_runs_total",
			Help: "Refresh task invocations by outcome",
		},
		[]string{"task", "outcome"},
	)

	TaskRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchsync_task_run_duration_seconds",
			Help:    "Duration of refresh task invocations in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"task"},
	)

	// Inbound surface metrics
	InboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_inbound_requests_total",
			Help: "Requests to the worker's own HTTP surface",
		},
		[]string{"path", "outcome"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchsync_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)

// RecordUpstreamCall records an upstream call metric
func RecordUpstreamCall(endpoint, outcome string, duration float64) {
	UpstreamCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamCallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordQuotaUsage updates the gauges for one counter
func RecordQuotaUsage(counter string, used, remaining int) {
	QuotaUsed.WithLabelValues(counter).Set(float64(used))
	QuotaRemaining.WithLabelValues(counter).Set(float64(remaining))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}
