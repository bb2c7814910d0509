package litequeue

// Entry is one persisted unit of queue data: a store-assigned identifier,
// the caller's payload, and the checkout flag. Entries are pure data; all
// behavior lives on the Queue.
type Entry[T any] struct {
	// ID is assigned by the store on insert. Identifiers are unique and
	// strictly increasing across the lifetime of the collection, never
	// reused, and never change once assigned. The ID is the default
	// ordering key and the handle used by Commit, Abort, and Delete.
	ID uint64 `msgpack:"id"`

	// Payload is the application value. The queue never interprets it
	// except to hand it to a caller-supplied ordering comparator.
	Payload T `msgpack:"payload"`

	// CheckedOut reports whether a consumer currently holds this entry
	// pending Commit or Abort. It is only ever true for entries of a
	// transactional queue; a non-transactional dequeue removes entries
	// outright with no intermediate claimed state.
	CheckedOut bool `msgpack:"checked_out"`
}
