package sstable

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/flashcore/elegancekv/block"
)

// defaultBloomFalsePositiveRate matches the teacher's own SST writer
// (bloom.NewWithEstimates(100000, 0.01)).
const defaultBloomFalsePositiveRate = 0.01

// Builder accumulates sorted key/value entries into data blocks and, on
// Build, writes the finished file: blocks, meta region, optional bloom
// region, and footer.
type Builder struct {
	blockSize   int
	curBuilder  *block.Builder
	firstKey    []byte
	data        bytes.Buffer
	metas       []BlockMeta
	bloomKeys   uint
	bloom       *bloomFilter
	bloomActive bool
}

// NewBuilder returns a Builder whose data blocks are each capped at
// blockSize encoded bytes.
func NewBuilder(blockSize int) *Builder {
	return &Builder{
		blockSize:  blockSize,
		curBuilder: block.NewBuilder(blockSize),
	}
}

// EnableBloomFilter turns on an optional presence filter sized for
// expectedKeys entries, written as an additive trailing region. Tables
// built without calling this have bloomLen=0 in their footer and parse
// identically to a filter-less table.
func (b *Builder) EnableBloomFilter(expectedKeys uint) {
	b.bloomActive = true
	b.bloom = newBloomFilter(expectedKeys, defaultBloomFalsePositiveRate)
}

// Add records key/value into the current block, rolling over to a new
// block when the current one refuses the entry.
func (b *Builder) Add(key, value []byte) {
	if b.firstKey == nil {
		b.firstKey = append([]byte(nil), key...)
	}

	if !b.curBuilder.Add(key, value) {
		b.finishBlock()
		b.firstKey = append([]byte(nil), key...)
		if !b.curBuilder.Add(key, value) {
			panic(fmt.Sprintf("sstable: entry for key %q does not fit in an empty block of size %d", key, b.blockSize))
		}
	}

	if b.bloomActive {
		b.bloom.add(key)
		b.bloomKeys++
	}
}

func (b *Builder) finishBlock() {
	if b.curBuilder.IsEmpty() {
		return
	}
	blk := b.curBuilder.Build()
	b.metas = append(b.metas, BlockMeta{Offset: uint64(b.data.Len()), FirstKey: b.firstKey})
	b.data.Write(blk.Encode())
	b.curBuilder = block.NewBuilder(b.blockSize)
}

// EstimatedSize approximates the final file size: data bytes written so
// far, plus meta bytes, plus the fixed footer.
func (b *Builder) EstimatedSize() int {
	return b.data.Len() + len(encodeMetas(b.metas)) + footerSize
}

// Build finishes the current block, assembles the meta region and
// optional bloom region, and writes the whole file to path.
func (b *Builder) Build(id uint64, cache Cache, path string) (*SSTable, error) {
	b.finishBlock()

	metaOffset := uint64(b.data.Len())
	metaBytes := encodeMetas(b.metas)

	var bloomBytes []byte
	if b.bloomActive {
		var err error
		bloomBytes, err = b.bloom.encode()
		if err != nil {
			return nil, err
		}
	}

	buf := make([]byte, 0, b.data.Len()+len(metaBytes)+len(bloomBytes)+footerSize)
	buf = append(buf, b.data.Bytes()...)
	buf = append(buf, metaBytes...)
	buf = append(buf, bloomBytes...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(bloomBytes)))
	buf = binary.BigEndian.AppendUint64(buf, metaOffset)

	file, err := Create(path, buf)
	if err != nil {
		return nil, err
	}

	return Open(id, file, cache)
}
