package tsstore

import (
	"os"
	"path/filepath"
	"sync"
)

// KVStore is an append-log key/value store: writes go to a single active
// data file, and a HashIndex tracks the latest record offset for each key.
// It does not model the teacher's segment rotation, relationship graph, or
// Explain diagnostics — see the design ledger for why those were dropped.
type KVStore struct {
	config   KVStoreConfig
	writer   *LogWriter
	reader   *LogReader
	index    *HashIndex
	dataFile string
	mutex    sync.Mutex
	isOpen   bool
}

// NewKVStore creates a store instance rooted at config.DataDir. Call Open
// before using it.
func NewKVStore(config KVStoreConfig) (*KVStore, error) {
	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return nil, err
	}

	return &KVStore{
		config:   config,
		dataFile: filepath.Join(config.DataDir, "active.tsdata"),
		index:    NewHashIndex(HashIndexConfig{}),
	}, nil
}

// Open opens (creating if absent) the active data file and rebuilds the
// index by replaying it from the start.
func (kv *KVStore) Open() error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if kv.isOpen {
		return nil
	}

	writer, err := NewLogWriter(LogWriterConfig{
		FilePath:      kv.dataFile,
		FsyncInterval: kv.config.FsyncInterval,
		BufferSize:    64 * 1024,
	})
	if err != nil {
		return err
	}
	kv.writer = writer

	reader, err := NewLogReader(LogReaderConfig{FilePath: kv.dataFile})
	if err != nil {
		kv.writer.Close()
		return err
	}
	kv.reader = reader

	if err := kv.index.BuildFromLog(kv.reader); err != nil {
		kv.reader.Close()
		kv.writer.Close()
		return err
	}

	kv.isOpen = true
	return nil
}

// Get retrieves the value stored for key.
func (kv *KVStore) Get(key []byte) ([]byte, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil, ErrStoreClosed
	}

	entry, exists := kv.index.Get(key)
	if !exists {
		return nil, ErrKeyNotFound
	}

	rec, err := kv.reader.ReadAt(entry.Offset)
	if err != nil {
		return nil, err
	}
	if rec.Tombstone {
		return nil, ErrKeyNotFound
	}

	return rec.Value, nil
}

// Put stores a key/value pair, overwriting any previous value for key.
func (kv *KVStore) Put(key, value []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}

	offset, size, timestamp, err := kv.writer.Put(key, value)
	if err != nil {
		return err
	}

	kv.index.Put(key, &IndexEntry{
		Offset:    offset,
		Size:      int(size),
		Timestamp: timestamp,
	})

	return nil
}

// Delete appends a tombstone for key and removes it from the index.
func (kv *KVStore) Delete(key []byte) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return ErrStoreClosed
	}
	if len(key) == 0 {
		return ErrInvalidKey
	}

	if _, _, err := kv.writer.Tombstone(key); err != nil {
		return err
	}

	kv.index.Delete(key)
	return nil
}

// ListKeys returns every key whose string form starts with prefix.
func (kv *KVStore) ListKeys(prefix []byte) ([]string, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil, ErrStoreClosed
	}
	return kv.index.KeysWithPrefix(string(prefix)), nil
}

// Stats reports the current key count and data file size.
func (kv *KVStore) Stats() *StoreStats {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return &StoreStats{}
	}

	return &StoreStats{
		Keys:     kv.index.Size(),
		DataSize: kv.writer.Size(),
	}
}

// Close flushes and closes the underlying writer and reader.
func (kv *KVStore) Close() error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	if !kv.isOpen {
		return nil
	}
	kv.isOpen = false

	if kv.writer != nil {
		if err := kv.writer.Close(); err != nil {
			kv.reader.Close()
			return err
		}
	}
	if kv.reader != nil {
		return kv.reader.Close()
	}
	return nil
}
