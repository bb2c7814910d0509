package litequeue

import "context"

// Predicate selects entries during a Find scan. A nil Predicate matches
// every entry.
type Predicate[T any] func(*Entry[T]) bool

// Store is the durable record collection a Queue is built on. The queue
// requires exactly this contract and nothing more; Collection is the
// Pebble-backed implementation this package ships, but any durable
// collection that assigns strictly increasing identifiers can serve.
//
// Find results carry no ordering guarantee. The Queue always sorts the
// returned entries itself; implementations are free to return records in
// whatever order the scan produces them.
type Store[T any] interface {
	// Insert persists a new entry and assigns its identifier, which is
	// also written back to e.ID.
	Insert(ctx context.Context, e *Entry[T]) (uint64, error)

	// InsertBulk persists a batch of new entries atomically, assigning
	// identifiers in slice order.
	InsertBulk(ctx context.Context, entries []*Entry[T]) error

	// Find returns decoded copies of all entries matching the predicate.
	// The result is fully materialized; mutating the store afterwards does
	// not affect it.
	Find(ctx context.Context, match Predicate[T]) ([]*Entry[T], error)

	// Update replaces the stored record identified by e.ID with e. It
	// fails with ErrNotFound if the record has been deleted.
	Update(ctx context.Context, e *Entry[T]) error

	// Delete removes the record with the given identifier. Deleting an
	// absent identifier is a no-op.
	Delete(ctx context.Context, id uint64) error

	// DeleteAll removes every record. Identifier assignment is not reset;
	// later inserts continue the sequence.
	DeleteAll(ctx context.Context) error

	// Count returns the number of records currently stored.
	Count(ctx context.Context) (int, error)

	// EnsureIndex is a performance hint for identifier and checkout-flag
	// lookups. Implementations may use it to build or maintain whatever
	// access structure makes their scans fast.
	EnsureIndex(ctx context.Context) error
}
