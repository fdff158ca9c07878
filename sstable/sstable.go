package sstable

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/flashcore/elegancekv/block"
)

// footerSize is the fixed trailing region: bloom_len:u32 | meta_offset:u64.
// The final 8 bytes always hold meta_offset, preserving spec's literal
// "last 8 bytes of the file" contract even with the bloom region added.
const footerSize = 4 + 8

// Cache is the collaborator an SSTable consults for read_block_cached. Any
// bounded concurrent cache offering single-flight get-or-insert semantics
// satisfies it; see package cache for the concrete implementation.
type Cache interface {
	GetOrInsert(sstID uint64, blockIdx uint32, fill func() (*block.Block, error)) (*block.Block, error)
}

// SSTable is an immutable, on-disk, sorted string table: a sequence of
// data blocks plus a BlockMeta index and an optional bloom filter for fast
// negative point lookups.
type SSTable struct {
	id         uint64
	file       *FileObject
	metas      []BlockMeta
	metaOffset uint64
	bloom      *bloomFilter // nil if the table was built without one
	cache      Cache
}

// Open reads an existing SSTable file's footer and meta region and
// constructs a reader over it. cache may be nil, in which case
// ReadBlockCached falls back to an uncached ReadBlock.
func Open(id uint64, file *FileObject, cache Cache) (*SSTable, error) {
	size := file.Size()
	if size < footerSize {
		return nil, fmt.Errorf("%w: file too short for footer", ErrMalformedSST)
	}

	footer, err := file.Read(size-footerSize, footerSize)
	if err != nil {
		return nil, err
	}
	bloomLen := binary.BigEndian.Uint32(footer[0:4])
	metaOffset := binary.BigEndian.Uint64(footer[4:12])

	bloomRegionEnd := size - footerSize
	bloomOffset := bloomRegionEnd - int64(bloomLen)
	if bloomOffset < int64(metaOffset) || int64(metaOffset) > size {
		return nil, fmt.Errorf("%w: inconsistent footer offsets", ErrMalformedSST)
	}

	metaBytes, err := file.Read(int64(metaOffset), int(bloomOffset-int64(metaOffset)))
	if err != nil {
		return nil, err
	}
	metas, err := decodeMetas(metaBytes)
	if err != nil {
		return nil, err
	}

	var filter *bloomFilter
	if bloomLen > 0 {
		bloomBytes, err := file.Read(bloomOffset, int(bloomLen))
		if err != nil {
			return nil, err
		}
		filter, err = decodeBloomFilter(bloomBytes)
		if err != nil {
			return nil, err
		}
	}

	return &SSTable{
		id:         id,
		file:       file,
		metas:      metas,
		metaOffset: metaOffset,
		bloom:      filter,
		cache:      cache,
	}, nil
}

// NumOfBlocks returns the number of data blocks in the table.
func (s *SSTable) NumOfBlocks() int {
	return len(s.metas)
}

// ID returns the table's identity, used as the cache key's first component.
func (s *SSTable) ID() uint64 {
	return s.id
}

// blockBounds returns the [start, end) byte range of block idx within the
// file.
func (s *SSTable) blockBounds(idx int) (start, end int64) {
	start = int64(s.metas[idx].Offset)
	if idx+1 < len(s.metas) {
		end = int64(s.metas[idx+1].Offset)
	} else {
		end = int64(s.metaOffset)
	}
	return start, end
}

// ReadBlock decodes block idx directly from the file, bypassing any cache.
// It panics if idx is out of range: an out-of-range index is caller error,
// not a recoverable I/O failure.
func (s *SSTable) ReadBlock(idx int) (*block.Block, error) {
	if idx < 0 || idx >= len(s.metas) {
		panic(fmt.Sprintf("sstable: block index %d out of range [0,%d)", idx, len(s.metas)))
	}
	start, end := s.blockBounds(idx)
	raw, err := s.file.Read(start, int(end-start))
	if err != nil {
		return nil, err
	}
	blk := block.Decode(raw)
	return &blk, nil
}

// ReadBlockCached resolves block idx through the configured Cache with
// single-flight semantics, falling back to an uncached ReadBlock when no
// cache is configured.
func (s *SSTable) ReadBlockCached(idx int) (*block.Block, error) {
	if s.cache == nil {
		return s.ReadBlock(idx)
	}
	return s.cache.GetOrInsert(s.id, uint32(idx), func() (*block.Block, error) {
		return s.ReadBlock(idx)
	})
}

// FindBlockIdx returns the largest index i such that
// block_metas[i].first_key <= key, clamped to 0.
func (s *SSTable) FindBlockIdx(key []byte) int {
	idx := sort.Search(len(s.metas), func(i int) bool {
		return string(s.metas[i].FirstKey) > string(key)
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// MayContain consults the bloom filter, when present, before a caller
// would otherwise perform a block read. A false result means the key is
// definitely absent; true means it might be present (or no filter is
// configured, in which case every key "may" be present).
func (s *SSTable) MayContain(key []byte) bool {
	if s.bloom == nil {
		return true
	}
	return s.bloom.test(key)
}
