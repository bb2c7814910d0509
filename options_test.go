package litequeue

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	logpkg "github.com/NomadeonSoftwareLLC/LiteQueue/pkg/log"
	"github.com/NomadeonSoftwareLLC/LiteQueue/pkg/metrics"
)

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestQueueRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	collector := metrics.NewCollector("logs")
	reg := prometheus.NewRegistry()
	if err := reg.Register(collector); err != nil {
		t.Fatalf("register: %v", err)
	}

	db := openTestDB(t, t.TempDir())
	coll, err := OpenCollection[string](db, "logs")
	if err != nil {
		t.Fatalf("open collection: %v", err)
	}
	q := New(coll, WithMetrics[string](collector))

	if _, err := q.EnqueueAll(ctx, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if got := gaugeValue(t, reg, "litequeue_depth"); got != 3 {
		t.Fatalf("depth = %v, want 3", got)
	}

	entries, err := q.Dequeue(ctx, 2)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if got := gaugeValue(t, reg, "litequeue_checked_out"); got != 2 {
		t.Fatalf("checked_out = %v, want 2", got)
	}

	if err := q.Commit(ctx, entries[0]); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := gaugeValue(t, reg, "litequeue_checked_out"); got != 1 {
		t.Fatalf("checked_out after commit = %v, want 1", got)
	}
	if got := gaugeValue(t, reg, "litequeue_depth"); got != 2 {
		t.Fatalf("depth after commit = %v, want 2", got)
	}

	if err := q.ResetOrphans(ctx); err != nil {
		t.Fatalf("reset orphans: %v", err)
	}
	if got := gaugeValue(t, reg, "litequeue_checked_out"); got != 0 {
		t.Fatalf("checked_out after reset = %v, want 0", got)
	}
}

func TestQueueLogsThroughSuppliedLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := logpkg.NewLogger(logpkg.WithLevel(logpkg.DebugLevel), logpkg.WithOutput(&buf))

	db := openTestDB(t, t.TempDir())
	coll, err := OpenCollection[string](db, "logs")
	if err != nil {
		t.Fatalf("open collection: %v", err)
	}
	q := New(coll, WithLogger[string](logger))

	if _, err := q.Enqueue(ctx, "hello"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !strings.Contains(buf.String(), "enqueued") {
		t.Fatalf("expected enqueue debug log, got %q", buf.String())
	}
}
