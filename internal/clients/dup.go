package clients

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/rzbill/radgw/internal/radius"
	pebblestore "github.com/rzbill/radgw/internal/storage/pebble"
)

// Keyspace:
//
//	dup/{addr}/{dupkey}          - seen-at expiry (8B big-endian ms)
//	dupidx/{expires_ms}/{addr}/{dupkey} - expiry index for sweeping
var (
	dupPrefix    = []byte("dup/")
	dupIdxPrefix = []byte("dupidx/")
)

// DupCache detects retransmitted requests within a configurable window.
// Entries persist in Pebble so a restart does not re-answer recent
// retransmissions, and an expiry-indexed sweep keeps the keyspace bounded.
type DupCache struct {
	db     *pebblestore.DB
	window time.Duration
}

// NewDupCache creates a duplicate cache with the given retention window.
func NewDupCache(db *pebblestore.DB, window time.Duration) *DupCache {
	if window <= 0 {
		window = 30 * time.Second
	}
	return &DupCache{db: db, window: window}
}

func dupKey(addr string, mk []byte) []byte {
	k := make([]byte, 0, len(dupPrefix)+len(addr)+1+len(mk))
	k = append(k, dupPrefix...)
	k = append(k, addr...)
	k = append(k, '/')
	return append(k, mk...)
}

func dupIdxKey(expiresMs int64, addr string, mk []byte) []byte {
	k := make([]byte, 0, len(dupIdxPrefix)+8+len(addr)+1+len(mk))
	k = append(k, dupIdxPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(expiresMs))
	k = append(k, b[:]...)
	k = append(k, addr...)
	k = append(k, '/')
	return append(k, mk...)
}

// Seen records the request and reports whether it is a retransmission of a
// request seen within the window. If nowMs <= 0, time.Now is used.
func (d *DupCache) Seen(ctx context.Context, cli *Client, m *radius.Message, nowMs int64) (bool, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	mk := radius.DuplicateKey(m)
	key := dupKey(cli.Addr(), mk)

	if v, err := d.db.Get(key); err == nil && len(v) >= 8 {
		if int64(binary.BigEndian.Uint64(v[:8])) > nowMs {
			return true, nil
		}
		// expired entry; fall through and refresh
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return false, err
	}

	expires := nowMs + d.window.Milliseconds()
	var val [8]byte
	binary.BigEndian.PutUint64(val[:], uint64(expires))
	b := d.db.NewBatch()
	defer b.Close()
	if err := b.Set(key, val[:], nil); err != nil {
		return false, err
	}
	if err := b.Set(dupIdxKey(expires, cli.Addr(), mk), nil, nil); err != nil {
		return false, err
	}
	return false, d.db.CommitBatch(ctx, b)
}

// Sweep removes entries whose window has passed, up to max. Returns how many
// entries were removed.
func (d *DupCache) Sweep(ctx context.Context, nowMs int64, max int) (int, error) {
	if nowMs <= 0 {
		nowMs = time.Now().UnixMilli()
	}
	hi := append(append([]byte{}, dupIdxPrefix...), 0xFF)
	iter, err := d.db.NewIter(&pebble.IterOptions{LowerBound: dupIdxPrefix, UpperBound: hi})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	b := d.db.NewBatch()
	defer b.Close()
	removed := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		k := iter.Key()
		if len(k) < len(dupIdxPrefix)+8 {
			continue
		}
		exp := int64(binary.BigEndian.Uint64(k[len(dupIdxPrefix) : len(dupIdxPrefix)+8]))
		if exp > nowMs {
			break
		}
		rest := k[len(dupIdxPrefix)+8:]
		entry := make([]byte, 0, len(dupPrefix)+len(rest))
		entry = append(entry, dupPrefix...)
		entry = append(entry, rest...)
		_ = b.Delete(append([]byte(nil), k...), nil)
		// the entry may have been refreshed with a later expiry; only delete
		// it when it is the one this index key points at
		if v, err := d.db.Get(entry); err == nil && len(v) >= 8 {
			if int64(binary.BigEndian.Uint64(v[:8])) <= nowMs {
				_ = b.Delete(entry, nil)
			}
		}
		removed++
		if max > 0 && removed >= max {
			break
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, d.db.CommitBatch(ctx, b)
}
