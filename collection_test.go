package litequeue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	pebblestore "github.com/NomadeonSoftwareLLC/LiteQueue/internal/storage/pebble"
)

func openTestCollection(t *testing.T) *Collection[string] {
	t.Helper()
	db := openTestDB(t, t.TempDir())
	coll, err := OpenCollection[string](db, "records")
	require.NoError(t, err)
	return coll
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	var last uint64
	for i := 0; i < 5; i++ {
		e := &Entry[string]{Payload: "x"}
		id, err := coll.Insert(ctx, e)
		require.NoError(t, err)
		require.Equal(t, id, e.ID)
		require.Greater(t, id, last)
		last = id
	}
	n, err := coll.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestInsertBulkAssignsIDsInSliceOrder(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	entries := []*Entry[string]{
		{Payload: "a"},
		{Payload: "b"},
		{Payload: "c"},
	}
	require.NoError(t, coll.InsertBulk(ctx, entries))
	for i := 1; i < len(entries); i++ {
		require.Equal(t, entries[i-1].ID+1, entries[i].ID)
	}

	require.ErrorIs(t, coll.InsertBulk(ctx, []*Entry[string]{{Payload: "d"}, nil}), ErrInvalidArgument)
}

func TestFindWithAndWithoutPredicate(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.InsertBulk(ctx, []*Entry[string]{
		{Payload: "keep"},
		{Payload: "drop"},
		{Payload: "keep"},
	}))

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)

	kept, err := coll.Find(ctx, func(e *Entry[string]) bool { return e.Payload == "keep" })
	require.NoError(t, err)
	require.Len(t, kept, 2)
}

func TestFindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	e := &Entry[string]{Payload: "original"}
	_, err := coll.Insert(ctx, e)
	require.NoError(t, err)

	first, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)
	first[0].Payload = "mutated"

	second, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "original", second[0].Payload)
}

func TestUpdateReplacesRecord(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	e := &Entry[string]{Payload: "v1"}
	_, err := coll.Insert(ctx, e)
	require.NoError(t, err)

	e.Payload = "v2"
	e.CheckedOut = true
	require.NoError(t, coll.Update(ctx, e))

	got, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "v2", got[0].Payload)
	require.True(t, got[0].CheckedOut)
}

func TestUpdateMissingRecordFails(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	err := coll.Update(ctx, &Entry[string]{ID: 42, Payload: "ghost"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsIdempotentAndMaintainsCount(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	e := &Entry[string]{Payload: "x"}
	id, err := coll.Insert(ctx, e)
	require.NoError(t, err)

	require.NoError(t, coll.Delete(ctx, id))
	n, err := coll.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	// Deleting an absent identifier is a no-op.
	require.NoError(t, coll.Delete(ctx, id))
	n, err = coll.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestDeleteAllPreservesIDCounter(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.InsertBulk(ctx, []*Entry[string]{
		{Payload: "a"}, {Payload: "b"}, {Payload: "c"},
	}))
	require.NoError(t, coll.DeleteAll(ctx))

	n, err := coll.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	e := &Entry[string]{Payload: "d"}
	id, err := coll.Insert(ctx, e)
	require.NoError(t, err)
	require.Equal(t, uint64(4), id)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t, t.TempDir())

	a, err := OpenCollection[string](db, "a")
	require.NoError(t, err)
	b, err := OpenCollection[string](db, "b")
	require.NoError(t, err)

	_, err = a.Insert(ctx, &Entry[string]{Payload: "only-in-a"})
	require.NoError(t, err)

	got, err := b.Find(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, got)

	na, err := a.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, na)
	nb, err := b.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, nb)
}

// A damaged sstable must surface as an error from the read path, never as
// a shorter result set.
func TestFindReportsCorruptedTables(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// A small memtable forces the records out of the WAL and into sstables.
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       dir,
		Fsync:         pebblestore.FsyncModeAlways,
		PebbleOptions: &pebble.Options{MemTableSize: 256 << 10},
	})
	require.NoError(t, err)
	coll, err := OpenCollection[string](db, "records")
	require.NoError(t, err)

	payload := strings.Repeat("x", 1024)
	for i := 0; i < 800; i++ {
		_, err := coll.Insert(ctx, &Entry[string]{Payload: payload})
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	ssts, err := filepath.Glob(filepath.Join(dir, "*.sst"))
	require.NoError(t, err)
	require.NotEmpty(t, ssts, "expected flushed sstables")
	for _, path := range ssts {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		for off := len(b) / 4; off < len(b); off += len(b) / 4 {
			b[off] ^= 0xFF
		}
		require.NoError(t, os.WriteFile(path, b, 0o644))
	}

	db2 := openTestDB(t, dir)
	coll2, err := OpenCollection[string](db2, "records")
	if err == nil {
		_, err = coll2.Find(ctx, nil)
	}
	require.Error(t, err)
}

// Updates racing deletes of the same records must leave the maintained
// count in agreement with the records actually present.
func TestConcurrentUpdateDelete(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	const total = 200
	entries := make([]*Entry[string], total)
	for i := range entries {
		entries[i] = &Entry[string]{Payload: "x"}
	}
	require.NoError(t, coll.InsertBulk(ctx, entries))

	var g errgroup.Group
	g.Go(func() error {
		for _, e := range entries {
			if e.ID%2 == 0 {
				if err := coll.Delete(ctx, e.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, e := range entries {
			u := &Entry[string]{ID: e.ID, Payload: "y"}
			if err := coll.Update(ctx, u); err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	found, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	n, err := coll.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(found), n)
	require.Equal(t, total/2, n)
}

func TestEnsureIndex(t *testing.T) {
	ctx := context.Background()
	coll := openTestCollection(t)

	require.NoError(t, coll.InsertBulk(ctx, []*Entry[string]{
		{Payload: "a"}, {Payload: "b"},
	}))
	require.NoError(t, coll.EnsureIndex(ctx))
}
