package litequeue

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	logpkg "github.com/NomadeonSoftwareLLC/LiteQueue/pkg/log"
	"github.com/NomadeonSoftwareLLC/LiteQueue/pkg/metrics"
)

// Queue is a durable FIFO queue over one Store collection. In the default
// transactional mode Dequeue claims entries by marking them checked out;
// the consumer later calls Commit to remove them for good or Abort to
// return them to availability. In non-transactional mode Dequeue removes
// entries outright.
//
// Every public operation is serialized through one mutex owned by the
// Queue instance. The lock is per instance, not per collection: goroutines
// that need mutual exclusion over one logical queue must share one Queue.
type Queue[T any] struct {
	mu            sync.Mutex
	store         Store[T]
	transactional bool
	less          LessFunc[T]
	logger        logpkg.Logger
	metrics       *metrics.Collector
	name          string
}

// New creates a Queue over the given store. The queue is transactional
// unless NonTransactional is passed; the mode cannot be changed afterwards.
func New[T any](store Store[T], opts ...Option[T]) *Queue[T] {
	q := &Queue[T]{
		store:         store,
		transactional: true,
		less:          orderByID[T],
		logger:        logpkg.Noop(),
	}
	if named, ok := store.(interface{ Name() string }); ok {
		q.name = named.Name()
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Transactional reports whether the queue uses the checkout protocol.
func (q *Queue[T]) Transactional() bool { return q.transactional }

// Name returns the underlying collection name, if the store exposes one.
func (q *Queue[T]) Name() string { return q.name }

// Enqueue appends one item to the queue. It fails with ErrInvalidArgument
// if the item is a nil value.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) (*Entry[T], error) {
	if isAbsent(item) {
		return nil, ErrInvalidArgument
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	start := time.Now()
	e := &Entry[T]{Payload: item}
	if _, err := q.store.Insert(ctx, e); err != nil {
		q.metrics.ObserveError(metrics.OpEnqueue)
		return nil, fmt.Errorf("enqueue: %w", err)
	}
	q.metrics.ObserveOp(metrics.OpEnqueue, 1, start)
	q.syncDepth(ctx)
	q.logger.Debug("enqueued", logpkg.F("queue", q.name), logpkg.F("id", e.ID))
	return e, nil
}

// EnqueueAll appends items as a single bulk insert, preserving their
// relative order of identifier assignment. Every item is validated before
// anything is inserted; one nil item rejects the whole batch.
func (q *Queue[T]) EnqueueAll(ctx context.Context, items []T) ([]*Entry[T], error) {
	for _, item := range items {
		if isAbsent(item) {
			return nil, ErrInvalidArgument
		}
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	start := time.Now()
	entries := make([]*Entry[T], len(items))
	for i, item := range items {
		entries[i] = &Entry[T]{Payload: item}
	}
	if err := q.store.InsertBulk(ctx, entries); err != nil {
		q.metrics.ObserveError(metrics.OpEnqueue)
		return nil, fmt.Errorf("enqueue bulk: %w", err)
	}
	q.metrics.ObserveOp(metrics.OpEnqueue, len(entries), start)
	q.syncDepth(ctx)
	q.logger.Debug("enqueued batch", logpkg.F("queue", q.name), logpkg.F("count", len(entries)))
	return entries, nil
}

// Dequeue claims up to n entries in the order given by the active ordering
// policy. In transactional mode the selected entries are marked checked
// out and remain in the store; otherwise they are deleted. The returned
// slice is never nil and is fully materialized before any mutation, so it
// reflects a consistent selection even though the store scan itself
// carries no ordering guarantee.
func (q *Queue[T]) Dequeue(ctx context.Context, n int) ([]*Entry[T], error) {
	if n <= 0 {
		n = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	start := time.Now()
	var match Predicate[T]
	if q.transactional {
		match = func(e *Entry[T]) bool { return !e.CheckedOut }
	}
	// Materialize the full candidate set before mutating anything.
	found, err := q.store.Find(ctx, match)
	if err != nil {
		q.metrics.ObserveError(metrics.OpDequeue)
		return nil, fmt.Errorf("dequeue scan: %w", err)
	}
	sort.SliceStable(found, func(i, j int) bool { return q.less(found[i], found[j]) })
	if len(found) > n {
		found = found[:n]
	}

	if q.transactional {
		for _, e := range found {
			e.CheckedOut = true
			if err := q.store.Update(ctx, e); err != nil {
				q.metrics.ObserveError(metrics.OpDequeue)
				return nil, fmt.Errorf("dequeue checkout %d: %w", e.ID, err)
			}
		}
		q.metrics.AddCheckouts(len(found))
	} else {
		for _, e := range found {
			if err := q.store.Delete(ctx, e.ID); err != nil {
				q.metrics.ObserveError(metrics.OpDequeue)
				return nil, fmt.Errorf("dequeue remove %d: %w", e.ID, err)
			}
		}
	}
	q.metrics.ObserveOp(metrics.OpDequeue, len(found), start)
	q.syncDepth(ctx)
	q.logger.Debug("dequeued", logpkg.F("queue", q.name), logpkg.F("count", len(found)))
	return found, nil
}

// DequeueOne claims the next entry, or returns (nil, nil) when the queue
// has nothing available.
func (q *Queue[T]) DequeueOne(ctx context.Context) (*Entry[T], error) {
	entries, err := q.Dequeue(ctx, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return entries[0], nil
}

// Commit permanently removes a checked-out entry, signaling successful
// processing. It fails with ErrInvalidArgument on a nil entry and with
// ErrInvalidOperation on a non-transactional queue.
func (q *Queue[T]) Commit(ctx context.Context, e *Entry[T]) error {
	if e == nil {
		return ErrInvalidArgument
	}
	if !q.transactional {
		return ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.commitLocked(ctx, e)
}

// CommitAll commits each entry independently: a failure stops the loop but
// does not roll back entries already committed.
func (q *Queue[T]) CommitAll(ctx context.Context, entries []*Entry[T]) error {
	if !q.transactional {
		return ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range entries {
		if e == nil {
			return ErrInvalidArgument
		}
		if err := q.commitLocked(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue[T]) commitLocked(ctx context.Context, e *Entry[T]) error {
	start := time.Now()
	if err := q.store.Delete(ctx, e.ID); err != nil {
		q.metrics.ObserveError(metrics.OpCommit)
		return fmt.Errorf("commit %d: %w", e.ID, err)
	}
	q.metrics.ObserveOp(metrics.OpCommit, 1, start)
	q.metrics.AddCheckouts(-1)
	q.syncDepth(ctx)
	return nil
}

// Abort releases a checked-out entry back to availability without removing
// it. It fails with ErrInvalidArgument on a nil entry and with
// ErrInvalidOperation on a non-transactional queue.
func (q *Queue[T]) Abort(ctx context.Context, e *Entry[T]) error {
	if e == nil {
		return ErrInvalidArgument
	}
	if !q.transactional {
		return ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.abortLocked(ctx, e)
}

// AbortAll aborts each entry independently, with the same partial-failure
// semantics as CommitAll.
func (q *Queue[T]) AbortAll(ctx context.Context, entries []*Entry[T]) error {
	if !q.transactional {
		return ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range entries {
		if e == nil {
			return ErrInvalidArgument
		}
		if err := q.abortLocked(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue[T]) abortLocked(ctx context.Context, e *Entry[T]) error {
	start := time.Now()
	e.CheckedOut = false
	if err := q.store.Update(ctx, e); err != nil {
		// The store still has the entry checked out; the handle must agree.
		e.CheckedOut = true
		q.metrics.ObserveError(metrics.OpAbort)
		return fmt.Errorf("abort %d: %w", e.ID, err)
	}
	q.metrics.ObserveOp(metrics.OpAbort, 1, start)
	q.metrics.AddCheckouts(-1)
	return nil
}

// CurrentCheckouts returns every entry currently checked out. It fails
// with ErrInvalidOperation on a non-transactional queue, where the concept
// does not exist.
func (q *Queue[T]) CurrentCheckouts(ctx context.Context) ([]*Entry[T], error) {
	if !q.transactional {
		return nil, ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Find(ctx, func(e *Entry[T]) bool { return e.CheckedOut })
}

// ResetOrphans aborts every current checkout, returning entries left
// claimed by a consumer that died before Commit or Abort. Call it once at
// process startup; there is no automatic lease expiry.
func (q *Queue[T]) ResetOrphans(ctx context.Context) error {
	if !q.transactional {
		return ErrInvalidOperation
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	start := time.Now()
	orphans, err := q.store.Find(ctx, func(e *Entry[T]) bool { return e.CheckedOut })
	if err != nil {
		q.metrics.ObserveError(metrics.OpResetOrphans)
		return fmt.Errorf("reset orphans scan: %w", err)
	}
	for _, e := range orphans {
		e.CheckedOut = false
		if err := q.store.Update(ctx, e); err != nil {
			q.metrics.ObserveError(metrics.OpResetOrphans)
			return fmt.Errorf("reset orphan %d: %w", e.ID, err)
		}
	}
	q.metrics.ObserveOp(metrics.OpResetOrphans, len(orphans), start)
	q.metrics.SetCheckouts(0)
	if len(orphans) > 0 {
		q.logger.Info("reset orphaned checkouts",
			logpkg.F("queue", q.name), logpkg.F("count", len(orphans)))
	}
	return nil
}

// Count returns the total number of entries in the collection, checked out
// or not.
func (q *Queue[T]) Count(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Count(ctx)
}

// Clear deletes every entry unconditionally, including checked-out ones.
func (q *Queue[T]) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	start := time.Now()
	if err := q.store.DeleteAll(ctx); err != nil {
		q.metrics.ObserveError(metrics.OpClear)
		return fmt.Errorf("clear: %w", err)
	}
	q.metrics.ObserveOp(metrics.OpClear, 1, start)
	q.metrics.SetDepth(0)
	q.metrics.SetCheckouts(0)
	q.logger.Info("cleared", logpkg.F("queue", q.name))
	return nil
}

// SetOrder replaces the ordering policy for subsequent Dequeue calls. A
// nil policy restores the default insertion order. SetOrder takes the same
// lock as Dequeue, so a policy swap can never interleave with a scan in
// flight.
func (q *Queue[T]) SetOrder(less LessFunc[T]) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if less == nil {
		less = orderByID[T]
	}
	q.less = less
}

// syncDepth refreshes the depth gauge after a mutating operation. The
// count is maintained in collection metadata, so this is a cheap read.
func (q *Queue[T]) syncDepth(ctx context.Context) {
	if q.metrics == nil {
		return
	}
	if n, err := q.store.Count(ctx); err == nil {
		q.metrics.SetDepth(n)
	}
}

// isAbsent reports whether the payload is Go's rendering of a null value:
// an untyped nil or a nil pointer, interface, map, slice, function, or
// channel.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
