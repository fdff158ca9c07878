package wal

import (
	"io"
	"iter"
	"os"
)

// Reader replays records from a WAL segment file in append order.
type Reader struct {
	f *os.File
}

// NewReader opens path for sequential WAL replay.
func NewReader(path string) (*Reader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Reader{f: f}, nil
}

// Read decodes the next record, or returns io.EOF once the file is
// exhausted.
func (r *Reader) Read() (*Log, error) {
	return Decode(r.f)
}

// All returns a sequence over every record in the file, stopping silently
// at EOF and surfacing any other decode error to the consumer.
func (r *Reader) All() iter.Seq2[*Log, error] {
	return func(yield func(*Log, error) bool) {
		for {
			l, err := Decode(r.f)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(l, nil) {
				return
			}
		}
	}
}

// Reset rewinds the reader to the start of the file.
func (r *Reader) Reset() error {
	_, err := r.f.Seek(0, io.SeekStart)
	return err
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
