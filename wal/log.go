// Package wal implements the write-ahead log record format: a
// CRC-checksummed, length-framed encoding of a single put/delete operation.
// It is ambient durability infrastructure for the demonstration engine, not
// part of the specified core.
package wal

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/flashcore/elegancekv/types"
)

const (
	invalidCRC   = uint32(0xFFFFFFFF)
	maxEntrySize = 16 << 20 // 16MB
)

// ErrCorruptWAL is returned by Decode when a record's checksum fails to
// verify or its declared length is nonsensical.
var ErrCorruptWAL = fmt.Errorf("wal: corrupt record")

// Log is a single WAL record: an operation plus its key and value.
type Log struct {
	op    types.Operation
	key   []byte
	value []byte
}

// NewLog constructs a Log record.
func NewLog(op types.Operation, key, value []byte) *Log {
	return &Log{op: op, key: key, value: value}
}

func (l *Log) Op() types.Operation { return l.op }
func (l *Log) Key() []byte         { return l.key }
func (l *Log) Value() []byte       { return l.value }

func (l *Log) String() string {
	return fmt.Sprintf("[operation: %s] [key: %s] [value: %s]", l.op, l.key, l.value)
}

// Size returns the number of bytes Encode will write for this record.
func (l *Log) Size() int {
	return 4 + 4 + 1 + 4 + len(l.key) + 4 + len(l.value)
}

// Encode writes the record as:
//
//	CRC (4) | TOTAL_LEN (4) | TYPE (1) | KEY_LEN (4) | KEY | VAL_LEN (4) | VALUE
//
// CRC = checksum(TOTAL_LEN | TYPE | KEY_LEN | KEY | VAL_LEN | VALUE). w must
// be an io.Seeker so the CRC placeholder written up front can be patched in
// after the payload is known.
func (l *Log) Encode(w io.Writer) error {
	seeker, ok := w.(io.Seeker)
	if !ok {
		return fmt.Errorf("wal: writer must be seekable")
	}

	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	keyLen := uint32(len(l.key))
	valLen := uint32(len(l.value))
	payloadLen := 1 + 4 + keyLen + 4 + valLen
	totalLen := 4 + payloadLen

	if totalLen > maxEntrySize {
		return fmt.Errorf("wal: entry too large: %d bytes", totalLen)
	}

	if err := binary.Write(w, binary.LittleEndian, invalidCRC); err != nil {
		return err
	}
	if err := binary.Write(mw, binary.LittleEndian, totalLen); err != nil {
		return err
	}
	if err := binary.Write(mw, binary.LittleEndian, byte(l.op)); err != nil {
		return err
	}
	if err := binary.Write(mw, binary.LittleEndian, keyLen); err != nil {
		return err
	}
	if _, err := mw.Write(l.key); err != nil {
		return err
	}
	if err := binary.Write(mw, binary.LittleEndian, valLen); err != nil {
		return err
	}
	if _, err := mw.Write(l.value); err != nil {
		return err
	}

	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := seeker.Seek(pos-int64(totalLen)-4, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, crc.Sum32()); err != nil {
		return err
	}
	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	return nil
}

func cleanEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

// Decode reads one record written by Encode. It returns io.EOF when r is
// exhausted exactly at a record boundary (including a truncated/partial
// final record, which is treated as "nothing more to read" rather than
// corruption) and ErrCorruptWAL when a complete record's checksum fails or
// its declared length is impossible.
func Decode(r io.Reader) (*Log, error) {
	var storedCRC uint32
	if err := binary.Read(r, binary.LittleEndian, &storedCRC); err != nil {
		return nil, cleanEOF(err)
	}
	if storedCRC == invalidCRC {
		return nil, io.EOF
	}

	var totalLen uint32
	if err := binary.Read(r, binary.LittleEndian, &totalLen); err != nil {
		return nil, cleanEOF(err)
	}
	if totalLen > maxEntrySize || totalLen < 4+1+4+4 {
		return nil, ErrCorruptWAL
	}

	payload := make([]byte, totalLen)
	binary.LittleEndian.PutUint32(payload[0:4], totalLen)
	if _, err := io.ReadFull(r, payload[4:]); err != nil {
		return nil, cleanEOF(err)
	}

	if crc32.ChecksumIEEE(payload) != storedCRC {
		return nil, ErrCorruptWAL
	}

	pos := 4
	var l Log
	l.op = types.Operation(payload[pos])
	pos++

	keyLen := binary.LittleEndian.Uint32(payload[pos:])
	pos += 4
	if keyLen > uint32(len(payload))-uint32(pos)-4 {
		return nil, ErrCorruptWAL
	}
	l.key = make([]byte, keyLen)
	copy(l.key, payload[pos:pos+int(keyLen)])
	pos += int(keyLen)

	valLen := binary.LittleEndian.Uint32(payload[pos:])
	pos += 4
	if valLen > uint32(len(payload))-uint32(pos) {
		return nil, ErrCorruptWAL
	}
	l.value = make([]byte, valLen)
	copy(l.value, payload[pos:pos+int(valLen)])

	return &l, nil
}
