// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Collection metrics
	MarketsListed    prometheus.Counter
	SnapshotsStored  prometheus.Counter
	StreamUpdates    prometheus.Counter
	DuplicateBatches prometheus.Counter
	CollectionErrors *prometheus.CounterVec

	// API metrics
	APICallLatency *prometheus.HistogramVec

	// Pipeline metrics
	PipelineRunsTotal   *prometheus.CounterVec
	PipelineDuration    prometheus.Histogram
	FeatureRowsComputed prometheus.Counter

	// Health metrics
	LastSuccessfulCollection prometheus.Gauge
	LastSuccessfulPipeline   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "kalshi_feature_lab"
	}

	return &Metrics{
		// Collection metrics
		MarketsListed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "markets_listed_total",
			Help:      "Total number of markets returned by the listing endpoint",
		}),
		SnapshotsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "snapshots_stored_total",
			Help:      "Total number of snapshots appended to the store",
		}),
		StreamUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "stream_updates_total",
			Help:      "Total number of websocket ticker updates consumed",
		}),
		DuplicateBatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "duplicate_batches_total",
			Help:      "Total number of snapshot batches skipped on duplicate keys",
		}),
		CollectionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "collector",
			Name:      "errors_total",
			Help:      "Total number of collection errors by stage",
		}, []string{"stage"}),

		// API metrics
		APICallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "call_latency_seconds",
			Help:      "Exchange API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of feature pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Feature pipeline run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		FeatureRowsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "feature_rows_computed_total",
			Help:      "Total number of feature rows computed",
		}),

		// Health metrics
		LastSuccessfulCollection: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_collection_timestamp",
			Help:      "Unix timestamp of the last successful poll",
		}),
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of the last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCollection records one successful poll.
func RecordCollection(marketsListed, snapshotsStored int) {
	DefaultMetrics.MarketsListed.Add(float64(marketsListed))
	DefaultMetrics.SnapshotsStored.Add(float64(snapshotsStored))
	DefaultMetrics.LastSuccessfulCollection.SetToCurrentTime()
}

// RecordStreamUpdate increments the stream updates counter.
func RecordStreamUpdate() {
	DefaultMetrics.StreamUpdates.Inc()
}

// RecordDuplicateBatch increments the duplicate batches counter.
func RecordDuplicateBatch() {
	DefaultMetrics.DuplicateBatches.Inc()
}

// RecordCollectionError records a collection error at the given stage.
func RecordCollectionError(stage string) {
	DefaultMetrics.CollectionErrors.WithLabelValues(stage).Inc()
}

// RecordAPILatency records one exchange API call.
func RecordAPILatency(endpoint string, seconds float64) {
	DefaultMetrics.APICallLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordPipelineRun records a feature pipeline run.
func RecordPipelineRun(status string, durationSeconds float64, rowsComputed int) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(durationSeconds)
	DefaultMetrics.FeatureRowsComputed.Add(float64(rowsComputed))
	if status == "success" {
		DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()
	}
}
