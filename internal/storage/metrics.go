package storage

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsOnce ensures metrics are only initialized once.
var metricsOnce sync.Once

// metricsInstance is the singleton instance of engine metrics.
var metricsInstance *Metrics

// Metrics holds all Prometheus metrics for the storage engine.
type Metrics struct {
	// Operation metrics
	OperationsTotal *prometheus.CounterVec // chunkvault_operations_total{operation,status}

	// Transfer metrics
	BytesUploaded   prometheus.Counter // chunkvault_bytes_uploaded_total
	BytesDownloaded prometheus.Counter // chunkvault_bytes_downloaded_total

	// Storage metrics
	ObjectsTotal prometheus.Gauge // chunkvault_objects_total
	ChunksTotal  prometheus.Gauge // chunkvault_chunks_total
	StoredBytes  prometheus.Gauge // chunkvault_stored_bytes
}

// InitMetrics initializes all engine metrics. Metrics are only
// registered once; subsequent calls return the same instance.
func InitMetrics(registry prometheus.Registerer) *Metrics {
	metricsOnce.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		metricsInstance = &Metrics{
			OperationsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "chunkvault_operations_total",
				Help: "Total storage operations by operation and status",
			}, []string{"operation", "status"}),

			BytesUploaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "chunkvault_bytes_uploaded_total",
				Help: "Total chunk bytes accepted by the engine",
			}),

			BytesDownloaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "chunkvault_bytes_downloaded_total",
				Help: "Total bytes served by object reads",
			}),

			ObjectsTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "chunkvault_objects_total",
				Help: "Number of live objects",
			}),

			ChunksTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "chunkvault_chunks_total",
				Help: "Number of stored chunks",
			}),

			StoredBytes: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "chunkvault_stored_bytes",
				Help: "Committed chunk bytes across all owners",
			}),
		}
	})

	return metricsInstance
}

// GetMetrics returns the singleton metrics instance.
// Returns nil if metrics have not been initialized.
func GetMetrics() *Metrics {
	return metricsInstance
}

// RecordOperation records an operation outcome.
func (m *Metrics) RecordOperation(operation, status string) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordUpload records chunk bytes accepted.
func (m *Metrics) RecordUpload(bytes int64) {
	m.BytesUploaded.Add(float64(bytes))
}

// RecordDownload records bytes served.
func (m *Metrics) RecordDownload(bytes int64) {
	m.BytesDownloaded.Add(float64(bytes))
}

// UpdateStorageMetrics updates the storage gauges.
func (m *Metrics) UpdateStorageMetrics(objects, chunks int, storedBytes int64) {
	m.ObjectsTotal.Set(float64(objects))
	m.ChunksTotal.Set(float64(chunks))
	m.StoredBytes.Set(float64(storedBytes))
}
