package runtime

import (
	"context"
	"errors"

	litequeue "github.com/NomadeonSoftwareLLC/LiteQueue"
	cfgpkg "github.com/NomadeonSoftwareLLC/LiteQueue/internal/config"
	pebblestore "github.com/NomadeonSoftwareLLC/LiteQueue/internal/storage/pebble"
	logpkg "github.com/NomadeonSoftwareLLC/LiteQueue/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir string
	Fsync   pebblestore.FsyncMode
	Config  cfgpkg.Config
	Logger  logpkg.Logger
}

// Runtime owns the storage handle the CLI's queues share.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger logpkg.Logger
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.Config.FsyncInterval(),
	})
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Noop()
	}
	return &Runtime{db: db, config: opts.Config, logger: logger}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth verifies the store is open and scannable.
func (r *Runtime) CheckHealth(_ context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// OpenQueue opens a string-payload queue over the named collection, using
// the transactional mode from the runtime config.
func (r *Runtime) OpenQueue(name string) (*litequeue.Queue[string], error) {
	coll, err := litequeue.OpenCollection[string](r.db, name)
	if err != nil {
		return nil, err
	}
	opts := []litequeue.Option[string]{litequeue.WithLogger[string](r.logger)}
	if !r.config.Transactional {
		opts = append(opts, litequeue.NonTransactional[string]())
	}
	return litequeue.New(coll, opts...), nil
}

// DB exposes the underlying store for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
