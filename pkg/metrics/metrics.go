// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal tracks requests made to the upstream CRM
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests made to the upstream CRM",
		},
		[]string{"method", "status_code"},
	)

	// UpstreamRequestDuration tracks upstream request duration
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Duration of upstream CRM requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// LabelCacheLookups tracks label resolver lookups by partition and outcome
	LabelCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "labels",
			Name:      "lookups_total",
			Help:      "Total number of label resolver lookups by outcome",
		},
		[]string{"partition", "outcome"},
	)

	// LabelCacheLoads tracks label catalog loads by status
	LabelCacheLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "labels",
			Name:      "loads_total",
			Help:      "Total number of label catalog loads by status",
		},
		[]string{"status"},
	)

	// FanoutBatchesTotal tracks touchpoint fanout batches by status
	FanoutBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "fanout",
			Name:      "batches_total",
			Help:      "Total number of touchpoint fanout batches by status",
		},
		[]string{"status"},
	)

	// FanoutItemsInFlight tracks fanout fetches currently being processed
	FanoutItemsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "fanout",
			Name:      "items_in_flight",
			Help:      "Number of fanout fetches currently being processed",
		},
	)

	// FanoutBatchDuration tracks touchpoint fanout batch duration
	FanoutBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "fanout",
			Name:      "batch_duration_seconds",
			Help:      "Duration of touchpoint fanout batches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// RedisOperationDuration tracks Redis operation duration
	RedisOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis operations in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"operation"},
	)
)

// RecordLabelLookup records a label resolver lookup outcome
func RecordLabelLookup(partition, outcome string) {
	LabelCacheLookups.WithLabelValues(partition, outcome).Inc()
}

// RecordFanoutBatch records a touchpoint fanout batch
func RecordFanoutBatch(status string, durationSeconds float64) {
	FanoutBatchesTotal.WithLabelValues(status).Inc()
	FanoutBatchDuration.Observe(durationSeconds)
}
