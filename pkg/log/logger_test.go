package log

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type captureOutput struct {
	lines []string
}

func (c *captureOutput) Write(_ *Entry, formatted []byte) error {
	c.lines = append(c.lines, string(formatted))
	return nil
}

func (c *captureOutput) Close() error { return nil }

func TestLevelFiltering(t *testing.T) {
	out := &captureOutput{}
	l := NewLogger(WithLevel(WarnLevel), WithOutput(out))
	l.Debug("nope")
	l.Info("nope")
	l.Warn("yes")
	l.Error("yes")
	if len(out.lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %v", len(out.lines), out.lines)
	}
}

func TestWithFieldsPropagate(t *testing.T) {
	out := &captureOutput{}
	l := NewLogger(WithLevel(DebugLevel), WithOutput(out)).With(Component("gateway"))
	l.Info("hello", Int("n", 3))
	if len(out.lines) != 1 {
		t.Fatalf("want 1 line, got %d", len(out.lines))
	}
	if !strings.Contains(out.lines[0], "component=gateway") || !strings.Contains(out.lines[0], "n=3") {
		t.Fatalf("fields missing: %s", out.lines[0])
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}
	b, err := f.Format(&Entry{
		Level:     InfoLevel,
		Message:   "m",
		Fields:    map[string]any{"error": errors.New("boom"), "k": "v"},
		Timestamp: time.Unix(0, 0).UTC(),
	})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj["msg"] != "m" || obj["error"] != "boom" || obj["k"] != "v" {
		t.Fatalf("bad object: %v", obj)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("debug"); err != nil || l != DebugLevel {
		t.Fatalf("debug: %v %v", l, err)
	}
	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatalf("want error for bogus level")
	}
}

func TestSetLevelSharedWithChildren(t *testing.T) {
	out := &captureOutput{}
	parent := NewLogger(WithLevel(ErrorLevel), WithOutput(out))
	child := parent.With(Str("k", "v"))
	parent.SetLevel(DebugLevel)
	child.Debug("visible")
	if len(out.lines) != 1 {
		t.Fatalf("child should inherit level change, got %d lines", len(out.lines))
	}
}
