package runtime

import (
	"context"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/radgw/internal/config"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
)

func openTestRuntime(t *testing.T, cfg cfgpkg.Config) *Runtime {
	t.Helper()
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfg})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpenCloseHealth(t *testing.T) {
	rt := openTestRuntime(t, cfgpkg.Default())
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestClientsRegisteredFromConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Clients = []cfgpkg.ClientEntry{{Addr: "192.0.2.1:1812", Identity: "nas1", Secret: "s3cret"}}
	rt := openTestRuntime(t, cfg)

	cli, err := rt.Clients().Acquire("192.0.2.1:1812")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if cli.Identity() != "nas1" {
		t.Fatalf("identity = %q", cli.Identity())
	}
	cli.Release()

	if _, err := rt.Clients().Acquire("198.51.100.9:1812"); err == nil {
		t.Fatalf("unknown peer acquired")
	}
}

func TestSweeperStopsOnClose(t *testing.T) {
	rt := openTestRuntime(t, cfgpkg.Default())
	rt.StartSweeper(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestJournalAvailable(t *testing.T) {
	rt := openTestRuntime(t, cfgpkg.Default())
	if rt.Journal() == nil || rt.Journal().LastSeq() != 0 {
		t.Fatalf("journal not wired")
	}
}
