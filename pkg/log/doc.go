// Package log is LiteQueue's structured logging facade.
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. The default implementation is backed
// by the standard library's slog, so output integrates with whatever slog
// handler configuration the host application uses. Library code that is
// handed no logger gets Noop(), which discards everything.
//
//	l := log.NewLogger(log.WithLevel(log.DebugLevel), log.WithJSON())
//	l = l.With(log.F("component", "queue"), log.F("queue", "outbound"))
//	l.Info("orphans reset", log.F("count", n))
package log
