package tsstore

import (
	"io"
	"strings"
	"sync"
)

// HashIndex provides O(1) average-case lookups from key to the offset of
// its most recent record in the log.
type HashIndex struct {
	entries map[string]*IndexEntry
	mutex   sync.RWMutex
}

// NewHashIndex creates a new, empty hash index.
func NewHashIndex(config HashIndexConfig) *HashIndex {
	return &HashIndex{entries: make(map[string]*IndexEntry)}
}

// Put adds or updates an index entry for a key.
func (idx *HashIndex) Put(key []byte, entry *IndexEntry) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.entries[string(key)] = entry
}

// Get retrieves the index entry for a key.
func (idx *HashIndex) Get(key []byte) (*IndexEntry, bool) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	entry, exists := idx.entries[string(key)]
	return entry, exists
}

// Delete removes a key from the index.
func (idx *HashIndex) Delete(key []byte) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	delete(idx.entries, string(key))
}

// Size returns the number of keys in the index.
func (idx *HashIndex) Size() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return len(idx.entries)
}

// Clear removes all entries from the index.
func (idx *HashIndex) Clear() {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()
	idx.entries = make(map[string]*IndexEntry)
}

// Keys returns all keys in the index.
func (idx *HashIndex) Keys() []string {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	keys := make([]string, 0, len(idx.entries))
	for key := range idx.entries {
		keys = append(keys, key)
	}
	return keys
}

// KeysWithPrefix returns all keys that start with prefix.
func (idx *HashIndex) KeysWithPrefix(prefix string) []string {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	var keys []string
	for key := range idx.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}

// ScanPrefix streams keys matching prefix over a channel.
func (idx *HashIndex) ScanPrefix(prefix string) <-chan string {
	ch := make(chan string, 100)

	go func() {
		defer close(ch)

		idx.mutex.RLock()
		keys := make([]string, 0, len(idx.entries))
		for key := range idx.entries {
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		idx.mutex.RUnlock()

		for _, key := range keys {
			ch <- key
		}
	}()

	return ch
}

// BuildFromLog replays reader from the start and rebuilds the index,
// dropping a key when its most recent record is a tombstone.
func (idx *HashIndex) BuildFromLog(reader *LogReader) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.entries = make(map[string]*IndexEntry)

	if err := reader.Seek(0); err != nil {
		return err
	}

	for {
		frameStart := reader.Offset()
		rec, err := reader.ReadNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		keyStr := string(rec.Key)
		if rec.Tombstone {
			delete(idx.entries, keyStr)
			continue
		}

		idx.entries[keyStr] = &IndexEntry{
			Offset:    frameStart,
			Size:      int(reader.Offset() - frameStart),
			Timestamp: rec.Timestamp,
		}
	}

	return nil
}

// Stats returns index statistics.
func (idx *HashIndex) Stats() *IndexStats {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return &IndexStats{TotalKeys: len(idx.entries)}
}
