// Package journal records the terminal outcome of every exchange in Pebble,
// giving operators a queryable trail of dropped and completed translations
// beyond what the logs retain.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
)

// Outcome is the terminal state an exchange reached.
type Outcome string

const (
	OutcomeDispatched Outcome = "dispatched"
	OutcomeDiscarded  Outcome = "discarded"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeHandled    Outcome = "handled"
	OutcomeTerminated Outcome = "terminated"
)

// Entry is one journal record.
type Entry struct {
	Seq        uint64  `json:"seq,omitempty"`
	TsMs       int64   `json:"tsMs"`
	Command    uint8   `json:"command"`
	Identifier uint8   `json:"identifier"`
	Client     string  `json:"client"`
	Outcome    Outcome `json:"outcome"`
	Violations int     `json:"violations,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// Keyspace:
//
//	jrnl/m          - metadata: lastSeq (8B)
//	jrnl/e/{seq_be8} - entries
var (
	metaKey     = []byte("jrnl/m")
	entryPrefix = []byte("jrnl/e/")
)

func entryKey(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// Journal is an append-only outcome log.
type Journal struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
}

// Open restores lastSeq from metadata if present.
func Open(db *pebblestore.DB) (*Journal, error) {
	j := &Journal{db: db}
	if meta, err := db.Get(metaKey); err == nil && len(meta) >= 8 {
		j.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return j, nil
}

// Append writes one entry. If e.TsMs is zero, the current time is used.
func (j *Journal) Append(ctx context.Context, e Entry) (uint64, error) {
	if e.TsMs == 0 {
		e.TsMs = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, err
	}
	var header [8]byte
	binary.BigEndian.PutUint64(header[:], uint64(e.TsMs))
	val := encodeRecord(header[:], payload)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.lastSeq++
	seq := j.lastSeq

	b := j.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(seq), val, nil); err != nil {
		return 0, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], j.lastSeq)
	if err := b.Set(metaKey, meta[:], nil); err != nil {
		return 0, err
	}
	if err := j.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	return seq, nil
}

// Read returns up to limit entries with seq > fromSeq, oldest first.
func (j *Journal) Read(ctx context.Context, fromSeq uint64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	lo := entryKey(fromSeq + 1)
	hi := append(append([]byte{}, entryPrefix...), 0xFF)
	iter, err := j.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for ok := iter.First(); ok && len(out) < limit; ok = iter.Next() {
		k := iter.Key()
		if len(k) < len(entryPrefix)+8 {
			continue
		}
		dec, okDec := decodeRecord(iter.Value())
		if !okDec {
			continue
		}
		var e Entry
		if err := json.Unmarshal(dec.payload, &e); err != nil {
			continue
		}
		e.Seq = binary.BigEndian.Uint64(k[len(k)-8:])
		out = append(out, e)
	}
	return out, nil
}

// LastSeq returns the sequence of the newest entry.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq
}
