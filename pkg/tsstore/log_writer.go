package tsstore

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ssargent/tokenstream/pkg/tsvarint"
)

// LogWriter appends logRecord frames to the active data file. Each frame is
// a tsvarint-encoded length followed by that many bytes of TokenStream
// payload, so a reader can walk the file without a fixed header shape.
type LogWriter struct {
	file       *os.File
	writer     *bufio.Writer
	fsyncTimer *time.Timer
	config     LogWriterConfig
	mutex      sync.Mutex
	offset     int64
}

// NewLogWriter creates a new log writer with the given configuration.
func NewLogWriter(config LogWriterConfig) (*LogWriter, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(0, 2); err != nil {
		file.Close()
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	bufSize := config.BufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}

	w := &LogWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, bufSize),
		config: config,
		offset: stat.Size(),
	}

	if config.FsyncInterval > 0 {
		w.fsyncTimer = time.AfterFunc(config.FsyncInterval, func() {
			w.mutex.Lock()
			defer w.mutex.Unlock()
			w.sync()
		})
	}

	return w, nil
}

// appendFrame writes rec's framed bytes and returns the offset it starts
// at and its framed size in bytes. Shared by Put and Tombstone so both go
// through one encode/write path.
func (w *LogWriter) appendFrame(rec *logRecord) (offset int64, size int64, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	payload := encodeRecord(rec)
	frame := tsvarint.Encode(nil, uint64(len(payload)))
	frame = append(frame, payload...)

	n, err := w.writer.Write(frame)
	if err != nil {
		return 0, 0, err
	}

	recordOffset := w.offset
	w.offset += int64(n)

	if w.config.FsyncInterval == 0 {
		if err := w.sync(); err != nil {
			return 0, 0, err
		}
	} else if w.fsyncTimer != nil {
		w.fsyncTimer.Reset(w.config.FsyncInterval)
	}

	return recordOffset, int64(n), nil
}

// Put appends a key/value record and returns its starting offset, its
// framed size, and the timestamp it was written with.
func (w *LogWriter) Put(key, value []byte) (offset int64, size int64, timestamp int64, err error) {
	rec := newPutRecord(key, value)
	offset, size, err = w.appendFrame(rec)
	return offset, size, rec.Timestamp, err
}

// Tombstone appends a tombstone record for key and returns its starting
// offset and framed size.
func (w *LogWriter) Tombstone(key []byte) (offset int64, size int64, err error) {
	return w.appendFrame(newTombstoneRecord(key))
}

// Sync forces a fsync to disk.
func (w *LogWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *LogWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes and closes the underlying file.
func (w *LogWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.fsyncTimer != nil {
		w.fsyncTimer.Stop()
	}

	if err := w.sync(); err != nil {
		w.file.Close()
		return err
	}

	return w.file.Close()
}

// Size returns the current size of the log file.
func (w *LogWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path.
func (w *LogWriter) Path() string {
	return w.config.FilePath
}
