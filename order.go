package litequeue

import "cmp"

// LessFunc reports whether entry a should be dequeued before entry b. It
// is the queue's ordering policy: every Dequeue sorts the candidate set
// with the active LessFunc before selecting entries, regardless of the
// order the store returned them in.
type LessFunc[T any] func(a, b *Entry[T]) bool

// OrderBy builds a LessFunc from a key extractor, comparing extracted keys
// in ascending order. The extractor typically reaches into the payload,
// e.g. an embedded timestamp:
//
//	q.SetOrder(litequeue.OrderBy(func(e *litequeue.Entry[Msg]) int64 {
//		return e.Payload.SentAt
//	}))
func OrderBy[T any, K cmp.Ordered](key func(*Entry[T]) K) LessFunc[T] {
	return func(a, b *Entry[T]) bool {
		return key(a) < key(b)
	}
}

// orderByID is the default policy: ascending insertion identifier, i.e.
// pure FIFO.
func orderByID[T any](a, b *Entry[T]) bool {
	return a.ID < b.ID
}
