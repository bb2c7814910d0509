package litequeue

import (
	logpkg "github.com/NomadeonSoftwareLLC/LiteQueue/pkg/log"
	"github.com/NomadeonSoftwareLLC/LiteQueue/pkg/metrics"
)

// Option configures a Queue at construction time.
type Option[T any] func(*Queue[T])

// NonTransactional builds the queue without the checkout protocol: Dequeue
// removes entries outright, and Commit, Abort, CurrentCheckouts, and
// ResetOrphans fail with ErrInvalidOperation. The mode is fixed for the
// lifetime of the queue.
func NonTransactional[T any]() Option[T] {
	return func(q *Queue[T]) { q.transactional = false }
}

// WithLogger supplies a structured logger. The queue logs nothing without
// one.
func WithLogger[T any](l logpkg.Logger) Option[T] {
	return func(q *Queue[T]) {
		if l != nil {
			q.logger = l
		}
	}
}

// WithOrder installs the initial ordering policy instead of the default
// insertion order. Equivalent to calling SetOrder before first use.
func WithOrder[T any](less LessFunc[T]) Option[T] {
	return func(q *Queue[T]) {
		if less != nil {
			q.less = less
		}
	}
}

// WithMetrics supplies a metrics collector. Registering it with Prometheus
// is the caller's choice.
func WithMetrics[T any](c *metrics.Collector) Option[T] {
	return func(q *Queue[T]) { q.metrics = c }
}
