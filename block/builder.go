package block

import "encoding/binary"

// Builder accumulates sorted key/value entries up to a caller-chosen
// encoded-size budget, then hands them off as an immutable Block.
type Builder struct {
	blockSize int
	data      []byte
	offsets   []uint16
}

// NewBuilder returns a Builder whose Build().Encode() output will never
// exceed blockSize bytes (data + 2·offset_count + 2-byte count footer),
// except for a block's unconditionally-accepted first entry.
func NewBuilder(blockSize int) *Builder {
	return &Builder{blockSize: blockSize}
}

// Add appends a key/value entry if it fits within the builder's size
// budget. The first entry added to an empty builder is always accepted
// regardless of size — callers are responsible for choosing a blockSize
// that makes that acceptable. Add refuses empty keys unconditionally.
func (b *Builder) Add(key, value []byte) bool {
	if len(key) == 0 {
		return false
	}

	entrySize := 2 + len(key) + 2 + len(value)
	newDataSize := len(b.data) + entrySize
	newFooterSize := 2*(len(b.offsets)+1) + 2
	if len(b.offsets) > 0 && newDataSize+newFooterSize > b.blockSize {
		return false
	}

	b.offsets = append(b.offsets, uint16(len(b.data)))
	b.data = binary.BigEndian.AppendUint16(b.data, uint16(len(key)))
	b.data = append(b.data, key...)
	b.data = binary.BigEndian.AppendUint16(b.data, uint16(len(value)))
	b.data = append(b.data, value...)
	return true
}

// IsEmpty reports whether any entry has been added.
func (b *Builder) IsEmpty() bool {
	return len(b.offsets) == 0
}

// CurSize returns the size in bytes the block would currently encode to.
func (b *Builder) CurSize() int {
	return len(b.data) + 2*len(b.offsets) + 2
}

// Build consumes the builder and returns the accumulated Block.
func (b *Builder) Build() Block {
	return Block{Data: b.data, Offsets: b.offsets}
}
