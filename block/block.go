// Package block implements the fixed-capacity sorted entry block used as
// the unit of encoding, disk I/O, and caching inside an SSTable.
package block

import "encoding/binary"

// Block is an in-memory view of a decoded data block: the concatenated
// entry bytes plus one offset per entry, in key order.
type Block struct {
	Data    []byte
	Offsets []uint16
}

// Encode emits the on-disk wire format:
//
//	entries: { key_len:u16 | key | val_len:u16 | val } *
//	offsets: u16 * N
//	count:   u16
//
// All integers big-endian.
func (b *Block) Encode() []byte {
	buf := make([]byte, 0, len(b.Data)+2*len(b.Offsets)+2)
	buf = append(buf, b.Data...)
	for _, off := range b.Offsets {
		buf = binary.BigEndian.AppendUint16(buf, off)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(b.Offsets)))
	return buf
}

// Decode parses the wire format written by Encode. A buffer too short to
// contain the count footer, or whose declared offset vector does not fit,
// decodes to an empty Block rather than erroring: the core treats a
// malformed block as "no entries", leaving higher layers (SSTable open) to
// reject the file outright if that is unexpected.
func Decode(buf []byte) Block {
	if len(buf) < 2 {
		return Block{}
	}
	count := binary.BigEndian.Uint16(buf[len(buf)-2:])
	offsetsLen := int(count) * 2
	if len(buf) < 2+offsetsLen {
		return Block{}
	}

	offsetsStart := len(buf) - 2 - offsetsLen
	offsets := make([]uint16, count)
	for i := 0; i < int(count); i++ {
		offsets[i] = binary.BigEndian.Uint16(buf[offsetsStart+2*i:])
	}

	data := make([]byte, offsetsStart)
	copy(data, buf[:offsetsStart])

	return Block{Data: data, Offsets: offsets}
}

// NumEntries returns the number of entries encoded in the block.
func (b *Block) NumEntries() int {
	return len(b.Offsets)
}

// entryAt decodes the key and value of the entry starting at byte offset
// off within b.Data.
func (b *Block) entryAt(off uint16) (key, value []byte) {
	buf := b.Data[off:]
	keyLen := binary.BigEndian.Uint16(buf)
	buf = buf[2:]
	key = buf[:keyLen]
	buf = buf[keyLen:]
	valLen := binary.BigEndian.Uint16(buf)
	buf = buf[2:]
	value = buf[:valLen]
	return key, value
}
