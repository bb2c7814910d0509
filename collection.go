package litequeue

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/vmihailenco/msgpack/v5"

	pebblestore "github.com/NomadeonSoftwareLLC/LiteQueue/internal/storage/pebble"
)

// Collection is the Pebble-backed Store implementation. Records are
// msgpack-encoded entries keyed by a fixed-width big-endian identifier;
// the identifier counter and the record count live in a small metadata
// record committed in the same batch as every mutation.
//
// The identifier counter survives DeleteAll: identifiers are never reused,
// even after the collection is cleared.
//
// A Collection is safe for concurrent use, but it is the Queue's
// exclusive lock, not the Collection's internal one, that makes the
// scan-then-mutate sequence of Dequeue atomic.
type Collection[T any] struct {
	db   *pebblestore.DB
	name string

	mu     sync.Mutex
	lastID uint64
	count  uint64
}

// OpenCollection opens the named collection in db, restoring the
// identifier counter and record count from its metadata record.
func OpenCollection[T any](db *pebblestore.DB, name string) (*Collection[T], error) {
	if db == nil {
		return nil, errors.New("litequeue: nil db")
	}
	if name == "" {
		return nil, errors.New("litequeue: collection name required")
	}
	c := &Collection[T]{db: db, name: name}
	meta, err := db.Get(metaKey(name))
	switch {
	case err == nil:
		if len(meta) < 16 {
			return nil, fmt.Errorf("litequeue: collection %q has malformed metadata", name)
		}
		c.lastID = binary.BigEndian.Uint64(meta[0:8])
		c.count = binary.BigEndian.Uint64(meta[8:16])
	case errors.Is(err, pebblestore.ErrNotFound):
		// fresh collection
	default:
		return nil, err
	}
	return c, nil
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Insert persists e, assigning the next identifier. The identifier is
// written to e.ID on success.
func (c *Collection[T]) Insert(ctx context.Context, e *Entry[T]) (uint64, error) {
	if e == nil {
		return 0, ErrInvalidArgument
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.db.NewBatch()
	defer b.Close()

	id := c.lastID + 1
	e.ID = id
	val, err := msgpack.Marshal(e)
	if err != nil {
		e.ID = 0
		return 0, fmt.Errorf("encode record: %w", err)
	}
	if err := b.Set(recordKey(c.name, id), val, nil); err != nil {
		e.ID = 0
		return 0, err
	}
	if err := setMeta(b, c.name, id, c.count+1); err != nil {
		e.ID = 0
		return 0, err
	}
	if err := c.db.CommitBatch(ctx, b); err != nil {
		e.ID = 0
		return 0, err
	}
	c.lastID = id
	c.count++
	return id, nil
}

// InsertBulk persists entries in one atomic batch, assigning a contiguous
// run of identifiers in slice order.
func (c *Collection[T]) InsertBulk(ctx context.Context, entries []*Entry[T]) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if e == nil {
			return ErrInvalidArgument
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.db.NewBatch()
	defer b.Close()

	id := c.lastID
	for _, e := range entries {
		id++
		e.ID = id
		val, err := msgpack.Marshal(e)
		if err != nil {
			c.resetIDs(entries)
			return fmt.Errorf("encode record: %w", err)
		}
		if err := b.Set(recordKey(c.name, id), val, nil); err != nil {
			c.resetIDs(entries)
			return err
		}
	}
	if err := setMeta(b, c.name, id, c.count+uint64(len(entries))); err != nil {
		c.resetIDs(entries)
		return err
	}
	if err := c.db.CommitBatch(ctx, b); err != nil {
		c.resetIDs(entries)
		return err
	}
	c.lastID = id
	c.count += uint64(len(entries))
	return nil
}

func (c *Collection[T]) resetIDs(entries []*Entry[T]) {
	for _, e := range entries {
		e.ID = 0
	}
}

// Find scans the collection's records and returns decoded copies of every
// entry matching the predicate. A nil predicate matches everything. Scan
// order is an implementation detail; callers that care must sort.
func (c *Collection[T]) Find(_ context.Context, match Predicate[T]) ([]*Entry[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lo, hi := keyRange(recordPrefix(c.name))
	iter, err := c.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}

	out := []*Entry[T]{}
	for ok := iter.First(); ok; ok = iter.Next() {
		e := new(Entry[T])
		if err := msgpack.Unmarshal(iter.Value(), e); err != nil {
			_ = iter.Close()
			return nil, fmt.Errorf("decode record %d: %w", idFromRecordKey(iter.Key()), err)
		}
		if match == nil || match(e) {
			out = append(out, e)
		}
	}
	// A scan that stops early looks like exhaustion; iter.Error is the only
	// way to tell a truncated result from a complete one.
	if err := iter.Error(); err != nil {
		_ = iter.Close()
		return nil, fmt.Errorf("scan %s: %w", c.name, err)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.name, err)
	}
	return out, nil
}

// Update replaces the record identified by e.ID. It fails with ErrNotFound
// if the record no longer exists, so a stale entry handle cannot resurrect
// a committed record.
func (c *Collection[T]) Update(_ context.Context, e *Entry[T]) error {
	if e == nil {
		return ErrInvalidArgument
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := recordKey(c.name, e.ID)
	if _, err := c.db.Get(key); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotFound, e.ID)
		}
		return err
	}
	val, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return c.db.Set(key, val)
}

// Delete removes the record with the given identifier. Deleting an absent
// identifier is a no-op.
func (c *Collection[T]) Delete(ctx context.Context, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := recordKey(c.name, id)
	if _, err := c.db.Get(key); err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil
		}
		return err
	}

	b := c.db.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	if err := setMeta(b, c.name, c.lastID, c.count-1); err != nil {
		return err
	}
	if err := c.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	c.count--
	return nil
}

// DeleteAll removes every record in one atomic batch. The identifier
// counter is preserved so later inserts continue the sequence.
func (c *Collection[T]) DeleteAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lo, hi := keyRange(recordPrefix(c.name))
	b := c.db.NewBatch()
	defer b.Close()
	if err := b.DeleteRange(lo, hi, nil); err != nil {
		return err
	}
	if err := setMeta(b, c.name, c.lastID, 0); err != nil {
		return err
	}
	if err := c.db.CommitBatch(ctx, b); err != nil {
		return err
	}
	c.count = 0
	return nil
}

// Count returns the number of records currently in the collection.
func (c *Collection[T]) Count(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.count), nil
}

// EnsureIndex responds to the Store performance hint. The record keyspace
// is already ordered by identifier, so no secondary structure is built;
// the hint schedules a compaction of the record range to keep scans fast
// after heavy churn.
func (c *Collection[T]) EnsureIndex(_ context.Context) error {
	lo, hi := keyRange(recordPrefix(c.name))
	return c.db.CompactRange(lo, hi)
}

func setMeta(b *pebble.Batch, name string, lastID, count uint64) error {
	var meta [16]byte
	binary.BigEndian.PutUint64(meta[0:8], lastID)
	binary.BigEndian.PutUint64(meta[8:16], count)
	return b.Set(metaKey(name), meta[:], nil)
}
