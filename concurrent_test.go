package litequeue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Ten producers enqueue a hundred unique values each; four consumers drain
// the queue with dequeue-then-commit loops. Every produced value must be
// committed exactly once.
func TestConcurrentProduceConsume(t *testing.T) {
	ctx := context.Background()
	q := openTestQueue(t)

	const (
		producers      = 10
		itemsPerWorker = 100
		consumers      = 4
		totalProduced  = producers * itemsPerWorker
	)

	var pg errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		pg.Go(func() error {
			for i := 0; i < itemsPerWorker; i++ {
				if _, err := q.Enqueue(ctx, fmt.Sprintf("p%02d-i%03d", p, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		t.Fatalf("produce: %v", err)
	}
	if n := mustCount(t, q); n != totalProduced {
		t.Fatalf("count after produce = %d, want %d", n, totalProduced)
	}

	var (
		mu        sync.Mutex
		committed = make(map[string]int, totalProduced)
	)
	var cg errgroup.Group
	for c := 0; c < consumers; c++ {
		cg.Go(func() error {
			for {
				e, err := q.DequeueOne(ctx)
				if err != nil {
					return err
				}
				if e == nil {
					return nil // queue observed empty
				}
				if err := q.Commit(ctx, e); err != nil {
					return err
				}
				mu.Lock()
				committed[e.Payload]++
				mu.Unlock()
			}
		})
	}
	if err := cg.Wait(); err != nil {
		t.Fatalf("consume: %v", err)
	}

	if len(committed) != totalProduced {
		t.Fatalf("distinct committed values = %d, want %d", len(committed), totalProduced)
	}
	for v, n := range committed {
		if n != 1 {
			t.Fatalf("value %q committed %d times", v, n)
		}
	}
	if n := mustCount(t, q); n != 0 {
		t.Fatalf("count after drain = %d, want 0", n)
	}
}
