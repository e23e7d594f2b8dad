package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/radgw/internal/config"
	"github.com/rzbill/radgw/internal/gateway"
	"github.com/rzbill/radgw/internal/plugins"
	"github.com/rzbill/radgw/internal/runtime"
	grpcserver "github.com/rzbill/radgw/internal/server/grpc"
	httpserver "github.com/rzbill/radgw/internal/server/http"
	radiusserver "github.com/rzbill/radgw/internal/server/radius"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
	logpkg "github.com/rzbill/radgw/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// small wrapper to allow testing; replaced by os.Getenv at build time
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	DataDir       string
	RADIUSAddr    string
	GRPCAddr      string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
}

// Run starts the gateway with its UDP front end and admin servers, blocking
// until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	storeDir := filepath.Join(opts.DataDir, "store")

	lcfg := &logpkg.Config{
		Level:  getenvDefault("RADGW_LOG_LEVEL", "info"),
		Format: getenvDefault("RADGW_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(lcfg)
	if err != nil {
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(lcfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Config:        opts.Config,
		Logger:        procLogger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	rt.StartSweeper(time.Duration(opts.Config.DuplicateWindowMs) * time.Millisecond / 2)

	drop, err := plugins.NewDropPlugin(opts.Config.DropExpr)
	if err != nil {
		return err
	}
	chain := plugins.NewChain(procLogger, drop, plugins.NewAuthPlugin(), plugins.NewAcctPlugin())

	rsrv := radiusserver.New(radiusserver.Options{
		Clients:       rt.Clients(),
		Logger:        procLogger,
		ReplyTTL:      time.Duration(opts.Config.Gateway.AnswerTimeoutMs) * time.Millisecond,
		MaxAttributes: opts.Config.Gateway.AttributesMax,
	})

	// Standalone mode answers locally through the loopback dispatcher; a
	// peer connector plugs in here when one is configured.
	gw, err := gateway.New(gateway.Options{
		Workers:          opts.Config.Workers,
		QueueCapacity:    opts.Config.QueueCapacity,
		DrainOnShutdown:  opts.Config.DrainOnShutdown,
		DrainTimeout:     time.Duration(opts.Config.DrainTimeoutMs) * time.Millisecond,
		OriginHost:       opts.Config.OriginHost,
		OriginRealm:      opts.Config.OriginRealm,
		DestinationRealm: opts.Config.DestinationRealm,
		Logger:           procLogger,
		Duplicates:       rt.Dups(),
		Chain:            chain,
		Dispatcher:       &gateway.LoopbackDispatcher{},
		Deliverer:        rsrv,
		Journal:          rt.Journal(),
		Registry:         rt.Registry(),
	})
	if err != nil {
		return err
	}
	rsrv.SetIntake(gw)
	if err := gw.Start(); err != nil {
		return err
	}

	procLogger.Info("Starting radgw server",
		logpkg.Str("radius", opts.RADIUSAddr),
		logpkg.Str("grpc", opts.GRPCAddr),
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Int("workers", opts.Config.Workers),
		logpkg.Int("queue_capacity", opts.Config.QueueCapacity),
		logpkg.Str("level", lcfg.Level),
		logpkg.Str("format", lcfg.Format),
	)

	gsrv := grpcserver.New(rt)
	hsrv := httpserver.New(rt, gw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rsrv.ListenAndServe(sctx, opts.RADIUSAddr); err != nil && sctx.Err() == nil {
			log.Printf("radius error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gsrv.ListenAndServe(sctx, opts.GRPCAddr); err != nil && sctx.Err() == nil {
			log.Printf("grpc error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, opts.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	<-sctx.Done()
	// Stop intake first, then drain the gateway, then shut the admin
	// surfaces and the store.
	rsrv.Close()
	if err := gw.Stop(context.Background()); err != nil {
		log.Printf("gateway stop: %v", err)
	}
	gsrv.Close()
	hsrv.Close()
	wg.Wait()
	return nil
}
