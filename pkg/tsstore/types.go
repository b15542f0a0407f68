package tsstore

import "time"

// IndexEntry records where a key's most recent record lives in the log.
type IndexEntry struct {
	Offset    int64 // Byte offset of the length prefix that starts the record
	Size      int   // Total framed size (length prefix + payload) in bytes
	Timestamp int64 // Record write time, UnixNano
}

// LogWriterConfig configures a LogWriter.
type LogWriterConfig struct {
	FilePath      string        // Path to the active data file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
}

// LogReaderConfig configures a LogReader.
type LogReaderConfig struct {
	FilePath    string // Path to the data file
	StartOffset int64  // Offset to start reading from
}

// HashIndexConfig configures a HashIndex. Reserved for future tuning
// knobs (max memory, persistence) the way the teacher's config left room
// for; empty today.
type HashIndexConfig struct{}

// KVStoreConfig configures a KVStore.
type KVStoreConfig struct {
	DataDir       string        // Directory for the active data file
	FsyncInterval time.Duration // Fsync interval for durability
}

// RecordIterator streams records out of a LogReader in file order.
type RecordIterator interface {
	Next() bool
	Record() *logRecord
	Close() error
}

// Errors
var (
	ErrKeyNotFound = &StoreError{"key not found"}
	ErrInvalidKey  = &StoreError{"invalid key"}
	ErrCorruption  = &StoreError{"malformed log record"}
	ErrStoreClosed = &StoreError{"store is not open"}
)

// StoreError is a plain sentinel-style error, matching the teacher's
// KVError rather than reaching for a richer error package for conditions
// that are never inspected beyond their identity.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string { return e.Message }

// StoreStats summarizes a KVStore's current size.
type StoreStats struct {
	Keys     int
	DataSize int64
}

// IndexStats summarizes a HashIndex's current size.
type IndexStats struct {
	TotalKeys int
}
