package main

import (
	"bytes"
	"strings"
	"testing"
)

// run executes one CLI invocation against the given data dir, as a user
// would invoke the binary repeatedly.
func run(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--data-dir", dataDir, "--queue", "logs"))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("litequeue %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestCLILifecycle(t *testing.T) {
	dir := t.TempDir()

	out := run(t, dir, "enqueue", "alpha", "beta")
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
		t.Fatalf("enqueue output: %q", out)
	}
	if out := run(t, dir, "count"); strings.TrimSpace(out) != "2" {
		t.Fatalf("count = %q, want 2", out)
	}

	out = run(t, dir, "dequeue")
	if !strings.Contains(out, "alpha") {
		t.Fatalf("dequeue output: %q", out)
	}
	id := strings.Fields(out)[0]

	out = run(t, dir, "checkouts")
	if !strings.Contains(out, "1 checked out") {
		t.Fatalf("checkouts output: %q", out)
	}

	run(t, dir, "commit", "--id", id)
	if out := run(t, dir, "count"); strings.TrimSpace(out) != "1" {
		t.Fatalf("count after commit = %q, want 1", out)
	}

	out = run(t, dir, "stats")
	if !strings.Contains(out, "transactional") || !strings.Contains(out, "entries:\t1") {
		t.Fatalf("stats output: %q", out)
	}

	run(t, dir, "clear")
	if out := run(t, dir, "count"); strings.TrimSpace(out) != "0" {
		t.Fatalf("count after clear = %q, want 0", out)
	}
}

func TestCLIDequeueEmpty(t *testing.T) {
	dir := t.TempDir()
	out := run(t, dir, "dequeue")
	if !strings.Contains(out, "queue is empty") {
		t.Fatalf("dequeue output: %q", out)
	}
}

func TestCLIResetOrphans(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "enqueue", "one")
	run(t, dir, "dequeue")
	run(t, dir, "reset-orphans")
	out := run(t, dir, "checkouts")
	if !strings.Contains(out, "0 checked out") {
		t.Fatalf("checkouts after reset: %q", out)
	}
}
