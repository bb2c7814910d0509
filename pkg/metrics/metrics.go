// Package metrics provides optional Prometheus instrumentation for
// LiteQueue. The queue records into a Collector when one is supplied via
// litequeue.WithMetrics; registration with a prometheus.Registerer is the
// caller's choice.
//
//	collector := metrics.NewCollector("outbound")
//	prometheus.MustRegister(collector)
//	q := litequeue.New(coll, litequeue.WithMetrics[string](collector))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "litequeue"

// Queue operation labels used by Collector.
const (
	OpEnqueue      = "enqueue"
	OpDequeue      = "dequeue"
	OpCommit       = "commit"
	OpAbort        = "abort"
	OpClear        = "clear"
	OpResetOrphans = "reset_orphans"
)

// Collector tracks per-queue operation metrics. All methods are safe on a
// nil receiver so queue code can record unconditionally.
type Collector struct {
	entries   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	opSeconds *prometheus.HistogramVec
	depth     prometheus.Gauge
	checkouts prometheus.Gauge
}

// NewCollector creates a Collector labeled with the queue name.
func NewCollector(queue string) *Collector {
	labels := prometheus.Labels{"queue": queue}
	return &Collector{
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "entries_total",
			Help:        "Entries processed, by operation.",
			ConstLabels: labels,
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "errors_total",
			Help:        "Failed operations, by operation.",
			ConstLabels: labels,
		}, []string{"op"}),
		opSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "op_duration_seconds",
			Help:        "Queue operation latency, by operation.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"op"}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "depth",
			Help:        "Entries currently in the collection, checked out or not.",
			ConstLabels: labels,
		}),
		checkouts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "checked_out",
			Help:        "Entries currently checked out.",
			ConstLabels: labels,
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	if c == nil {
		return
	}
	c.entries.Describe(ch)
	c.errors.Describe(ch)
	c.opSeconds.Describe(ch)
	c.depth.Describe(ch)
	c.checkouts.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	c.entries.Collect(ch)
	c.errors.Collect(ch)
	c.opSeconds.Collect(ch)
	c.depth.Collect(ch)
	c.checkouts.Collect(ch)
}

// ObserveOp records one completed operation touching n entries.
func (c *Collector) ObserveOp(op string, n int, start time.Time) {
	if c == nil {
		return
	}
	c.entries.WithLabelValues(op).Add(float64(n))
	c.opSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// ObserveError records one failed operation.
func (c *Collector) ObserveError(op string) {
	if c == nil {
		return
	}
	c.errors.WithLabelValues(op).Inc()
}

// SetDepth updates the queue depth gauge.
func (c *Collector) SetDepth(n int) {
	if c == nil {
		return
	}
	c.depth.Set(float64(n))
}

// AddCheckouts moves the checked-out gauge by delta (negative on commit or
// abort).
func (c *Collector) AddCheckouts(delta int) {
	if c == nil {
		return
	}
	c.checkouts.Add(float64(delta))
}

// SetCheckouts sets the checked-out gauge outright, used by ResetOrphans.
func (c *Collector) SetCheckouts(n int) {
	if c == nil {
		return
	}
	c.checkouts.Set(float64(n))
}
