// Package engine wires the core storage packages (memtable, WAL,
// segmentmanager, sstable, cache) together behind a single Put/Get/Delete
// surface. It sits outside the storage core itself: the core treats the
// memtable, WAL and SSTable as independent collaborators, and this package
// is one way to drive them, not the only way.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flashcore/elegancekv/arena"
	"github.com/flashcore/elegancekv/cache"
	"github.com/flashcore/elegancekv/memtable"
	"github.com/flashcore/elegancekv/segmentmanager"
	"github.com/flashcore/elegancekv/skiplist"
	"github.com/flashcore/elegancekv/sstable"
	"github.com/flashcore/elegancekv/types"
	"github.com/flashcore/elegancekv/wal"
)

// ErrKeyNotFound is returned by Get when no live entry exists for a key,
// either because it was never written or because the most recent write was
// a Delete.
var ErrKeyNotFound = errors.New("engine: key not found")

const (
	defaultMemtableBytes = 4 << 20
	defaultBlockSize     = 4 << 10
	defaultCacheBlocks   = 256
	defaultWALBuffer     = 64
)

// DB is a minimal LSM engine: writes land in the active memtable and the
// WAL; once the memtable fills (or a conflicting update forces rotation)
// it is flushed to an immutable SSTable and a fresh memtable takes over.
type DB struct {
	mu sync.Mutex

	dir       string
	cmp       skiplist.Comparator
	memBytes  uint32
	blockSize int

	nextTableID uint64
	mem         *memtable.MemTable
	walw        *wal.Writer
	sm          segmentmanager.SegmentManager
	blockCache  *cache.BlockCache
	tables      []*sstable.SSTable // newest first
}

// Option configures Open.
type Option func(*DB)

// WithMemtableBytes overrides the arena capacity of each memtable
// generation.
func WithMemtableBytes(n uint32) Option {
	return func(db *DB) { db.memBytes = n }
}

// WithBlockSize overrides the target encoded size of each SSTable data
// block.
func WithBlockSize(n int) Option {
	return func(db *DB) { db.blockSize = n }
}

// WithCacheBlocks overrides the block cache's capacity, in blocks.
func WithCacheBlocks(n int) Option {
	return func(db *DB) { db.blockCache = cache.New(n) }
}

// Open starts a database rooted at dir with an empty memtable and no
// SSTables, appending new writes to a WAL under dir/wal. It does not replay
// existing WAL segments and does not reopen SSTable files from an earlier
// run.
func Open(dir string, opts ...Option) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: create data dir: %w", err)
	}

	sm, err := segmentmanager.NewDiskSegmentManager(filepath.Join(dir, "wal"))
	if err != nil {
		return nil, fmt.Errorf("engine: open wal dir: %w", err)
	}

	db := &DB{
		dir:        dir,
		cmp:        skiplist.BytewiseComparator{},
		memBytes:   defaultMemtableBytes,
		blockSize:  defaultBlockSize,
		blockCache: cache.New(defaultCacheBlocks),
		sm:         sm,
	}
	for _, opt := range opts {
		opt(db)
	}

	db.mem = memtable.New(0, db.memBytes, db.cmp)
	db.walw = wal.NewWriter(defaultWALBuffer, sm)

	return db, nil
}

// Put stores value for key, superseding any earlier value or tombstone.
func (db *DB) Put(key, value []byte) error {
	return db.apply(types.OperationPut, key, value)
}

// Delete marks key as removed. A subsequent Get returns ErrKeyNotFound
// until the key is written again.
func (db *DB) Delete(key []byte) error {
	return db.apply(types.OperationDelete, key, nil)
}

func (db *DB) apply(op types.Operation, key, value []byte) error {
	if len(key) == 0 {
		return skiplist.ErrEmptyKey
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.walw.Write(wal.NewLog(op, key, value)); err != nil {
		return fmt.Errorf("engine: wal write: %w", err)
	}

	encoded := encodeValue(op, value)
	if err := db.putIntoMemtable(key, encoded); err != nil {
		return err
	}

	if db.mem.MemSize() >= db.memBytes {
		if err := db.rotateMemtable(); err != nil {
			return err
		}
	}
	return nil
}

// putIntoMemtable inserts into the active memtable, rotating to a fresh
// generation and retrying once if the active memtable cannot take the
// write directly: either the key already holds a different encoded entry
// (the skiplist never overwrites in place) or its arena is full.
func (db *DB) putIntoMemtable(key, encoded []byte) error {
	err := db.mem.Put(key, encoded)
	if err == nil {
		return nil
	}
	if !errors.Is(err, memtable.ErrPutConflict) && !errors.Is(err, arena.ErrOutOfSpace) {
		return fmt.Errorf("engine: memtable put: %w", err)
	}

	if err := db.rotateMemtable(); err != nil {
		return err
	}
	if err := db.mem.Put(key, encoded); err != nil {
		return fmt.Errorf("engine: memtable put after rotation: %w", err)
	}
	return nil
}

// Get returns the value most recently written for key, searching the
// active memtable and then flushed SSTables from newest to oldest.
func (db *DB) Get(key []byte) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if raw, ok := db.mem.Get(key); ok {
		return decodeLiveValue(raw)
	}

	for _, t := range db.tables {
		if !t.MayContain(key) {
			continue
		}
		it, err := sstable.CreateAndSeekToKey(t, key)
		if err != nil {
			return nil, fmt.Errorf("engine: sstable seek: %w", err)
		}
		if it.IsValid() && bytes.Equal(it.Key(), key) {
			return decodeLiveValue(it.Value())
		}
	}

	return nil, ErrKeyNotFound
}

func decodeLiveValue(raw []byte) ([]byte, error) {
	op, value := decodeValue(raw)
	if op == types.OperationDelete {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// rotateMemtable flushes the active memtable to a new immutable SSTable
// and replaces it with an empty one. Callers must hold db.mu.
func (db *DB) rotateMemtable() error {
	if db.mem.IsEmpty() {
		return nil
	}

	id := db.nextTableID
	db.nextTableID++

	b := sstable.NewBuilder(db.blockSize)
	if n := db.mem.Len(); n > 0 {
		b.EnableBloomFilter(uint(n))
	}

	it := db.mem.Scan(skiplist.Unbounded(), skiplist.Unbounded())
	for it.IsValid() {
		b.Add(it.Key(), it.Value())
		it.Next()
	}

	path := filepath.Join(db.dir, fmt.Sprintf("%05d.sst", id))
	table, err := b.Build(id, db.blockCache, path)
	if err != nil {
		return fmt.Errorf("engine: flush sstable %d: %w", id, err)
	}

	db.tables = append([]*sstable.SSTable{table}, db.tables...)
	db.mem = memtable.New(id+1, db.memBytes, db.cmp)

	if err := db.sm.RotateSegment(); err != nil {
		return fmt.Errorf("engine: rotate wal segment: %w", err)
	}
	return nil
}

// Close stops accepting writes and releases the WAL's resources. Already
// flushed SSTables remain on disk and already open file handles are left
// to the OS; Close does not delete any state.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.walw.Close(); err != nil {
		return fmt.Errorf("engine: close wal: %w", err)
	}
	return nil
}
