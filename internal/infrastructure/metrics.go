package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the ingestion-facing Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	BatchesTotal       *prometheus.CounterVec
	RecordsProcessed   prometheus.Counter
	RecordsFailed      prometheus.Counter
	ProcessingDuration prometheus.Histogram
	StoredRecords      prometheus.Gauge
}

// NewMetrics creates the collectors on a dedicated registry so tests can
// build isolated instances.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		BatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Subsystem: "ingestion",
			Name:      "batches_total",
			Help:      "Number of ingestion batches by final status.",
		}, []string{"status"}),
		RecordsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Subsystem: "ingestion",
			Name:      "records_processed_total",
			Help:      "Number of records accepted and persisted.",
		}),
		RecordsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Subsystem: "ingestion",
			Name:      "records_failed_total",
			Help:      "Number of rows rejected by validation or deduplication.",
		}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shoppulse",
			Subsystem: "ingestion",
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock processing time per batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		StoredRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "shoppulse",
			Subsystem: "store",
			Name:      "records",
			Help:      "Number of records currently persisted.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
