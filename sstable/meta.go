package sstable

import "encoding/binary"

// BlockMeta indexes one data block: its byte offset within the SSTable
// file, and the first key stored inside it.
type BlockMeta struct {
	Offset   uint64
	FirstKey []byte
}

// encodeMetas concatenates a slice of BlockMeta using the wire format
// `offset:u64 | fk_len:u16 | fk:bytes`, repeated with no count prefix — the
// meta region is terminated by the file's footer, not a length field.
func encodeMetas(metas []BlockMeta) []byte {
	var buf []byte
	for _, m := range metas {
		buf = binary.BigEndian.AppendUint64(buf, m.Offset)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(m.FirstKey)))
		buf = append(buf, m.FirstKey...)
	}
	return buf
}

// decodeMetas parses the region written by encodeMetas.
func decodeMetas(buf []byte) ([]BlockMeta, error) {
	var metas []BlockMeta
	for len(buf) > 0 {
		if len(buf) < 10 {
			return nil, ErrMalformedSST
		}
		offset := binary.BigEndian.Uint64(buf)
		fkLen := binary.BigEndian.Uint16(buf[8:])
		buf = buf[10:]
		if len(buf) < int(fkLen) {
			return nil, ErrMalformedSST
		}
		firstKey := make([]byte, fkLen)
		copy(firstKey, buf[:fkLen])
		buf = buf[fkLen:]
		metas = append(metas, BlockMeta{Offset: offset, FirstKey: firstKey})
	}
	return metas, nil
}
