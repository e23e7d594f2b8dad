package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/radgw/internal/config"
	"github.com/rzbill/radgw/internal/gateway"
	"github.com/rzbill/radgw/internal/journal"
	"github.com/rzbill/radgw/internal/runtime"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
)

type fixedStats struct{ s gateway.Stats }

func (f fixedStats) Stats() gateway.Stats { return f.s }

func openTestRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestHealthHandler(t *testing.T) {
	s := New(openTestRuntime(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
}

func TestStatsHandler(t *testing.T) {
	rt := openTestRuntime(t)
	s := New(rt, fixedStats{s: gateway.Stats{Workers: 4, QueueDepth: 1, QueueCapacity: 64}})
	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Gateway gateway.Stats `json:"gateway"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Gateway.Workers != 4 || out.Gateway.QueueCapacity != 64 {
		t.Fatalf("bad stats: %+v", out.Gateway)
	}
}

func TestJournalHandler(t *testing.T) {
	rt := openTestRuntime(t)
	_, _ = rt.Journal().Append(context.Background(), journal.Entry{TsMs: 1, Outcome: journal.OutcomeDispatched, Client: "c1"})
	_, _ = rt.Journal().Append(context.Background(), journal.Entry{TsMs: 2, Outcome: journal.OutcomeTerminated, Client: "c1"})

	s := New(rt, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/journal?from=0&limit=10", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	var out struct {
		Entries []journal.Entry `json:"entries"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Entries) != 2 || out.Entries[1].Outcome != journal.OutcomeTerminated {
		t.Fatalf("bad entries: %+v", out.Entries)
	}
}

func TestMetricsHandler(t *testing.T) {
	s := New(openTestRuntime(t), nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Fatalf("metrics output missing process collectors")
	}
}
