// Package tsstore is an append-only log store for TokenStream-encoded
// records, plus an optional Pebble-backed store for keying whole records
// (e.g. manifest.Manifest) by name. It replaces the fixed 20-byte
// CRC32+sizes+timestamp header the teacher's log format used with a
// self-delimiting length-prefixed TokenStream chunk per log entry, since
// checksum validation is explicitly out of scope here.
package tsstore

import (
	"time"

	"github.com/ssargent/tokenstream/pkg/tsio"
	"github.com/ssargent/tokenstream/pkg/tstoken"
)

const (
	recordTokenKey       = 0
	recordTokenValue     = 1
	recordTokenTimestamp = 2
	recordTokenTombstone = 3
)

// logRecord is one entry in the append log: a key, an optional value, the
// write time, and a tombstone flag marking a deleted key. A tombstone still
// carries the key so the index can find and remove the prior entry on
// replay, but never carries a value.
type logRecord struct {
	Key       []byte
	Value     []byte
	Timestamp int64
	Tombstone bool
}

var recordMap = tstoken.NewTokenMap(
	tstoken.Entry[logRecord]{Token: recordTokenKey, Accessor: tstoken.Accessor[logRecord]{
		Get: func(r *tsio.Reader, d *logRecord) { d.Key = r.GetBytes() },
		Put: func(w *tsio.Writer, t uint64, s *logRecord) { w.PutBytes(t, s.Key, nil) },
	}},
	tstoken.Entry[logRecord]{Token: recordTokenValue, Accessor: tstoken.Accessor[logRecord]{
		Get: func(r *tsio.Reader, d *logRecord) { d.Value = r.GetBytes() },
		Put: func(w *tsio.Writer, t uint64, s *logRecord) { w.PutBytes(t, s.Value, nil) },
	}},
	tstoken.Entry[logRecord]{Token: recordTokenTimestamp, Accessor: tstoken.Accessor[logRecord]{
		Get: func(r *tsio.Reader, d *logRecord) { d.Timestamp = r.GetInt64() },
		Put: func(w *tsio.Writer, t uint64, s *logRecord) { tstoken.PutInt64(w, t, tstoken.WithDefault(s.Timestamp, 0)) },
	}},
	tstoken.Entry[logRecord]{Token: recordTokenTombstone, Accessor: tstoken.Accessor[logRecord]{
		Get: func(r *tsio.Reader, d *logRecord) { d.Tombstone = r.GetBool() },
		Put: func(w *tsio.Writer, t uint64, s *logRecord) { tstoken.PutBool(w, t, tstoken.WithDefault(s.Tombstone, false)) },
	}},
)

func newPutRecord(key, value []byte) *logRecord {
	return &logRecord{Key: key, Value: value, Timestamp: time.Now().UnixNano()}
}

func newTombstoneRecord(key []byte) *logRecord {
	return &logRecord{Key: key, Timestamp: time.Now().UnixNano(), Tombstone: true}
}

// encodeRecord serializes r's fields to a standalone TokenStream payload,
// without the log's length prefix.
func encodeRecord(r *logRecord) []byte {
	w := tsio.NewMemoryWriter()
	recordMap.Write(w, r)
	return w.Bytes()
}

// decodeRecord parses a standalone TokenStream payload (as produced by
// encodeRecord) back into a logRecord.
func decodeRecord(data []byte) (*logRecord, error) {
	var rec logRecord
	r := tsio.NewReader(data)
	recordMap.Read(r, &rec)
	if r.BadStream() {
		return nil, ErrCorruption
	}
	return &rec, nil
}
