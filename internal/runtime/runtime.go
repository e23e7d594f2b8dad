package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rzbill/radgw/internal/clients"
	cfgpkg "github.com/rzbill/radgw/internal/config"
	"github.com/rzbill/radgw/internal/journal"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        logpkg.Logger
}

// Runtime wires storage, config, and the shared gateway collaborators for a
// single-node instance: the client table, the duplicate cache, the outcome
// journal, and the metrics registry.
type Runtime struct {
	db       *pebblestore.DB
	config   cfgpkg.Config
	log      logpkg.Logger
	clients  *clients.Table
	dups     *clients.DupCache
	journal  *journal.Journal
	registry *prometheus.Registry

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = logpkg.NopLogger{}
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
	})
	if err != nil {
		return nil, err
	}
	j, err := journal.Open(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rt := &Runtime{
		db:       db,
		config:   opts.Config,
		log:      opts.Logger.With(logpkg.Component("runtime")),
		clients:  clients.NewTable(),
		dups:     clients.NewDupCache(db, time.Duration(opts.Config.DuplicateWindowMs)*time.Millisecond),
		journal:  j,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, c := range opts.Config.Clients {
		rt.clients.Register(c.Addr, c.Identity, []byte(c.Secret))
	}
	return rt, nil
}

// Close stops background work and closes underlying resources.
func (r *Runtime) Close() error {
	if r.sweepCancel != nil {
		r.sweepCancel()
		<-r.sweepDone
		r.sweepCancel = nil
	}
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// StartSweeper runs the duplicate-cache sweeper until Close.
func (r *Runtime) StartSweeper(interval time.Duration) {
	if r.sweepCancel != nil || interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.sweepCancel = cancel
	r.sweepDone = make(chan struct{})
	go func() {
		defer close(r.sweepDone)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := r.dups.Sweep(ctx, 0, 10_000)
				if err != nil {
					r.log.Warn("duplicate cache sweep failed", logpkg.Err(err))
				} else if n > 0 {
					r.log.Debug("duplicate cache swept", logpkg.Int("removed", n))
				}
			}
		}
	}()
}

// CheckHealth performs a simple health check against the store.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Clients returns the peer table.
func (r *Runtime) Clients() *clients.Table { return r.clients }

// Dups returns the duplicate cache.
func (r *Runtime) Dups() *clients.DupCache { return r.dups }

// Journal returns the outcome journal.
func (r *Runtime) Journal() *journal.Journal { return r.journal }

// Registry returns the process metrics registry.
func (r *Runtime) Registry() *prometheus.Registry { return r.registry }

// DB exposes the underlying DB for advanced operations (internal use only).
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
