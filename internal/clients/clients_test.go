package clients

import (
	"context"
	"testing"
	"time"

	"github.com/rzbill/radgw/internal/radius"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
)

func testTable() (*Table, *Client) {
	t := NewTable()
	c := t.Register("192.0.2.1:1812", "nas-1", []byte("s3cret"))
	return t, c
}

func TestAcquireRelease(t *testing.T) {
	tbl, c := testTable()
	got, err := tbl.Acquire("192.0.2.1:1812")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if got != c || got.Refs() != 1 {
		t.Fatalf("refs=%d", got.Refs())
	}
	got.Release()
	if got.Refs() != 0 {
		t.Fatalf("refs after release=%d", got.Refs())
	}
	if _, err := tbl.Acquire("198.51.100.9:1812"); err == nil {
		t.Fatalf("want error for unknown peer")
	}
}

func TestReleaseUnderflowPanics(t *testing.T) {
	_, c := testTable()
	defer func() {
		if recover() == nil {
			t.Fatalf("want panic on refcount underflow")
		}
	}()
	c.Release()
}

func TestCheckOrigin(t *testing.T) {
	_, c := testTable()

	ok := radius.New(radius.CodeAccessRequest, 1)
	ok.AddAttribute(radius.AttrNASIdentifier, []byte("nas-1"))
	ok.AddAttribute(radius.AttrNASIPAddress, []byte{192, 0, 2, 1})
	if err := c.CheckOrigin(ok); err != nil {
		t.Fatalf("origin: %v", err)
	}

	badID := radius.New(radius.CodeAccessRequest, 1)
	badID.AddAttribute(radius.AttrNASIdentifier, []byte("impostor"))
	if err := c.CheckOrigin(badID); err == nil {
		t.Fatalf("want identity mismatch error")
	}

	badIP := radius.New(radius.CodeAccessRequest, 1)
	badIP.AddAttribute(radius.AttrNASIPAddress, []byte{203, 0, 113, 7})
	if err := c.CheckOrigin(badIP); err == nil {
		t.Fatalf("want address mismatch error")
	}
}

func openDupCache(t *testing.T, window time.Duration) *DupCache {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewDupCache(db, window)
}

func TestDupCacheDetectsRetransmission(t *testing.T) {
	_, c := testTable()
	d := openDupCache(t, time.Minute)
	ctx := context.Background()

	m := radius.New(radius.CodeAccessRequest, 7)
	if dup, err := d.Seen(ctx, c, m, 1000); err != nil || dup {
		t.Fatalf("first seen: dup=%v err=%v", dup, err)
	}
	if dup, err := d.Seen(ctx, c, m, 2000); err != nil || !dup {
		t.Fatalf("retransmission not detected: dup=%v err=%v", dup, err)
	}

	// a different identifier is a different request
	m2 := radius.New(radius.CodeAccessRequest, 8)
	if dup, _ := d.Seen(ctx, c, m2, 2000); dup {
		t.Fatalf("distinct request flagged as duplicate")
	}
}

func TestDupCacheWindowExpires(t *testing.T) {
	_, c := testTable()
	d := openDupCache(t, time.Second)
	ctx := context.Background()

	m := radius.New(radius.CodeAccessRequest, 7)
	if dup, _ := d.Seen(ctx, c, m, 1000); dup {
		t.Fatalf("first seen")
	}
	// outside the 1s window it is no longer a duplicate
	if dup, _ := d.Seen(ctx, c, m, 5000); dup {
		t.Fatalf("expired entry still flagged")
	}
}

func TestDupCacheSweep(t *testing.T) {
	_, c := testTable()
	d := openDupCache(t, time.Second)
	ctx := context.Background()

	for i := uint8(0); i < 5; i++ {
		m := radius.New(radius.CodeAccessRequest, i)
		if _, err := d.Seen(ctx, c, m, 1000); err != nil {
			t.Fatalf("seen: %v", err)
		}
	}
	removed, err := d.Sweep(ctx, 10_000, 0)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 5 {
		t.Fatalf("want 5 swept, got %d", removed)
	}
	// nothing left to sweep
	removed, _ = d.Sweep(ctx, 10_000, 0)
	if removed != 0 {
		t.Fatalf("second sweep removed %d", removed)
	}
}
