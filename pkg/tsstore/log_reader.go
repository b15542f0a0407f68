package tsstore

import (
	"bufio"
	"io"
	"os"

	"github.com/ssargent/tokenstream/pkg/tsvarint"
)

// LogReader provides sequential and random access to the frames a
// LogWriter appends: a tsvarint length followed by that many bytes of
// TokenStream payload.
type LogReader struct {
	file   *os.File
	reader *bufio.Reader
	offset int64
	config LogReaderConfig
}

// NewLogReader opens a log reader for the specified file.
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, 0); err != nil {
			file.Close()
			return nil, err
		}
	}

	return &LogReader{
		file:   file,
		reader: bufio.NewReader(file),
		offset: config.StartOffset,
		config: config,
	}, nil
}

// readFrame reads one length-prefixed payload from src, returning the
// decoded record and the total number of bytes the frame occupied.
func readFrame(src *bufio.Reader) (*logRecord, int, error) {
	length, isList, err := tsvarint.Decode(src, false)
	if err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}
	if isList {
		return nil, 0, ErrCorruption
	}

	lengthWidth := len(tsvarint.Encode(nil, length))
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(src, payload); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, 0, ErrCorruption
			}
			return nil, 0, err
		}
	}

	rec, err := decodeRecord(payload)
	if err != nil {
		return nil, 0, err
	}

	return rec, lengthWidth + int(length), nil
}

// ReadNext reads the next record from the current offset.
func (r *LogReader) ReadNext() (*logRecord, error) {
	rec, frameSize, err := readFrame(r.reader)
	if err != nil {
		return nil, err
	}
	r.offset += int64(frameSize)
	return rec, nil
}

// ReadAt reads a single record whose frame starts at offset, reopening the
// file so it always observes data a concurrent writer has since flushed.
func (r *LogReader) ReadAt(offset int64) (*logRecord, error) {
	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if _, err := file.Seek(offset, 0); err != nil {
		return nil, err
	}

	rec, _, err := readFrame(bufio.NewReader(file))
	if err != nil {
		if err == io.EOF {
			return nil, ErrCorruption
		}
		return nil, err
	}
	return rec, nil
}

// Seek sets the read offset, discarding any buffered bytes.
func (r *LogReader) Seek(offset int64) error {
	if _, err := r.file.Seek(offset, 0); err != nil {
		return err
	}
	r.reader = bufio.NewReader(r.file)
	r.offset = offset
	return nil
}

// Offset returns the current read offset.
func (r *LogReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator over records from the current
// offset onward.
func (r *LogReader) Iterator() RecordIterator {
	return &logRecordIterator{reader: r}
}

// Close closes the underlying file.
func (r *LogReader) Close() error {
	return r.file.Close()
}

type logRecordIterator struct {
	reader *LogReader
	record *logRecord
}

func (it *logRecordIterator) Next() bool {
	rec, err := it.reader.ReadNext()
	it.record = rec
	return err == nil
}

func (it *logRecordIterator) Record() *logRecord {
	return it.record
}

func (it *logRecordIterator) Close() error {
	return nil
}
