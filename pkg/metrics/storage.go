package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageHook implements the storage wrapper's MetricsHook, exposing read
// and batch-commit latency and volume as Prometheus metrics. Pass it via
// pebblestore.Options.Metrics.
type StorageHook struct {
	readSeconds   prometheus.Histogram
	commitSeconds prometheus.Histogram
	readBytes     prometheus.Counter
	commitBytes   prometheus.Counter
}

// NewStorageHook creates a StorageHook.
func NewStorageHook() *StorageHook {
	return &StorageHook{
		readSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "read_duration_seconds",
			Help:      "Point read latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		commitSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "commit_duration_seconds",
			Help:      "Batch commit latency, including WAL sync.",
			Buckets:   prometheus.DefBuckets,
		}),
		readBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "read_bytes_total",
			Help:      "Bytes returned by point reads.",
		}),
		commitBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "commit_bytes_total",
			Help:      "Bytes committed in batches.",
		}),
	}
}

// ObserveRead implements pebblestore.MetricsHook.
func (h *StorageHook) ObserveRead(elapsed time.Duration, bytes int) {
	h.readSeconds.Observe(elapsed.Seconds())
	h.readBytes.Add(float64(bytes))
}

// ObserveBatchCommit implements pebblestore.MetricsHook.
func (h *StorageHook) ObserveBatchCommit(elapsed time.Duration, bytes int) {
	h.commitSeconds.Observe(elapsed.Seconds())
	h.commitBytes.Add(float64(bytes))
}

// Describe implements prometheus.Collector.
func (h *StorageHook) Describe(ch chan<- *prometheus.Desc) {
	h.readSeconds.Describe(ch)
	h.commitSeconds.Describe(ch)
	h.readBytes.Describe(ch)
	h.commitBytes.Describe(ch)
}

// Collect implements prometheus.Collector.
func (h *StorageHook) Collect(ch chan<- prometheus.Metric) {
	h.readSeconds.Collect(ch)
	h.commitSeconds.Collect(ch)
	h.readBytes.Collect(ch)
	h.commitBytes.Collect(ch)
}
