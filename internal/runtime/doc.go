// Package runtime wires storage, config, and logging into the single-node
// instance the CLI operates on. It exposes Open/Close, a basic health
// check, and a helper to open string-payload queues.
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	q, _ := rt.OpenQueue("outbound")
//	_, _ = q.Enqueue(context.Background(), "hello")
package runtime
