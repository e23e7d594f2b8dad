package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Workers != 2 {
		t.Fatalf("default workers")
	}
	if cfg.QueueCapacity != 1024 {
		t.Fatalf("default queue capacity")
	}
	if !cfg.DrainOnShutdown {
		t.Fatalf("default drain policy should be drain")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "radgw.json")
	data := []byte(`{"workers":8,"queueCapacity":64,"drainOnShutdown":false,"originHost":"gw1.example.net","originRealm":"example.net"}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 8 {
		t.Fatalf("expected 8 workers")
	}
	if cfg.QueueCapacity != 64 {
		t.Fatalf("expected 64 capacity")
	}
	if cfg.DrainOnShutdown {
		t.Fatalf("expected drain disabled")
	}
	if cfg.OriginHost != "gw1.example.net" {
		t.Fatalf("expected origin host override")
	}
	// untouched fields keep defaults
	if cfg.DuplicateWindowMs != 30_000 {
		t.Fatalf("expected default duplicate window")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("RADGW_WORKERS", "5")
	os.Setenv("RADGW_DRAIN_ON_SHUTDOWN", "false")
	os.Setenv("RADGW_ORIGIN_REALM", "staging.net")
	t.Cleanup(func() {
		os.Unsetenv("RADGW_WORKERS")
		os.Unsetenv("RADGW_DRAIN_ON_SHUTDOWN")
		os.Unsetenv("RADGW_ORIGIN_REALM")
	})
	FromEnv(&cfg)
	if cfg.Workers != 5 {
		t.Fatalf("env override workers")
	}
	if cfg.DrainOnShutdown {
		t.Fatalf("env override drain")
	}
	if cfg.OriginRealm != "staging.net" {
		t.Fatalf("env override realm")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("want error for zero workers")
	}
	cfg = Default()
	cfg.QueueCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("want error for zero capacity")
	}
	cfg = Default()
	cfg.OriginHost = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("want error for empty origin host")
	}
}
