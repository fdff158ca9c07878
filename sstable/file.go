package sstable

import (
	"fmt"
	"os"
)

// FileObject is a minimal random-access file abstraction: reads are
// positional (pread-style, via ReadAt) and never disturb a shared cursor,
// so concurrent readers of one FileObject are safe. Writes are whole-file,
// performed once at Create time; there are no partial appends.
type FileObject struct {
	f    *os.File
	size int64
}

// Create writes bytes to path in full and returns a FileObject open for
// reading it back.
func Create(path string, data []byte) (*FileObject, error) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("sstable: create %s: %w", path, err)
	}
	return OpenFile(path)
}

// OpenFile opens an existing file at path for positional reads.
func OpenFile(path string) (*FileObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sstable: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sstable: stat %s: %w", path, err)
	}
	return &FileObject{f: f, size: info.Size()}, nil
}

// Read returns the length bytes starting at offset.
func (fo *FileObject) Read(offset int64, length int) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := fo.f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("sstable: read at %d: %w", offset, err)
	}
	return buf, nil
}

// Size returns the total byte length of the file.
func (fo *FileObject) Size() int64 {
	return fo.size
}

// Close releases the underlying file handle.
func (fo *FileObject) Close() error {
	return fo.f.Close()
}
