// Package litequeue provides a crash-durable FIFO queue for single-process
// applications, backed by an embedded Pebble store.
//
// The queue is intended for unattended or embedded programs that must hand
// off work items across process restarts and network outages without a
// broker. In the default transactional mode a consumer checks an entry out,
// attempts the risky work, and only removes the entry once that work
// succeeds:
//
//	db, err := pebblestore.Open(pebblestore.Options{DataDir: "./data"})
//	if err != nil {
//		// handle
//	}
//	defer db.Close()
//
//	coll, err := litequeue.OpenCollection[string](db, "outbound")
//	if err != nil {
//		// handle
//	}
//	q := litequeue.New(coll)
//
//	// Reclaim entries left checked out by a previous crash.
//	if err := q.ResetOrphans(ctx); err != nil {
//		// handle
//	}
//
//	entry, err := q.DequeueOne(ctx)
//	if err != nil || entry == nil {
//		// handle / nothing queued
//	}
//	if err := send(entry.Payload); err != nil {
//		_ = q.Abort(ctx, entry) // back to the queue
//	} else {
//		_ = q.Commit(ctx, entry) // gone for good
//	}
//
// # Ordering
//
// Dequeue order defaults to insertion order (ascending store identifier).
// SetOrder installs a caller-supplied comparator, typically built with
// OrderBy over a field of the payload.
//
// # Concurrency
//
// Every public operation of a Queue is serialized through one mutex owned
// by that Queue instance. The lock is per instance, not per collection: all
// goroutines that need mutual exclusion over one logical queue must share
// one Queue value. Two Queue instances over the same collection, or two
// processes over the same data directory, are not coordinated.
//
// # Delivery guarantees
//
// Entries are delivered at least once. A consumer that dies between Dequeue
// and Commit leaves its entries checked out until ResetOrphans is called,
// usually once at process startup. Deduplication of re-delivered items is
// the caller's responsibility.
package litequeue
