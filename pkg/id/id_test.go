package id

import (
	"sync"
	"testing"
)

func TestNextIsMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		cur := g.Next()
		if cur.Compare(prev) <= 0 {
			t.Fatalf("id not increasing: %s <= %s", cur, prev)
		}
		prev = cur
	}
}

func TestNextBackwardsClock(t *testing.T) {
	g := NewGenerator()
	orig := NowMs
	defer func() { NowMs = orig }()

	NowMs = func() int64 { return 2000 }
	a := g.Next()
	NowMs = func() int64 { return 1000 } // clock goes backwards
	b := g.Next()
	if b.Compare(a) <= 0 {
		t.Fatalf("expected monotonic id across clock regression")
	}
}

func TestConcurrentUnique(t *testing.T) {
	g := NewGenerator()
	const n = 200
	ids := make(chan ID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.Next()
		}()
	}
	wg.Wait()
	close(ids)
	seen := map[ID]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestParts(t *testing.T) {
	id := makeID(123, 456)
	ms, seq := id.Parts()
	if ms != 123 || seq != 456 {
		t.Fatalf("parts = %d,%d", ms, seq)
	}
}
