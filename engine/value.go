package engine

import "github.com/flashcore/elegancekv/types"

// encodeValue prefixes value with a one-byte operation tag so a tombstone
// can travel through the memtable and an SSTable block exactly like a put
// entry; both packages only ever see opaque bytes.
func encodeValue(op types.Operation, value []byte) []byte {
	out := make([]byte, 1+len(value))
	out[0] = byte(op)
	copy(out[1:], value)
	return out
}

// decodeValue splits a stored entry back into its operation tag and the
// caller-visible value. An empty raw entry decodes as a put of nil.
func decodeValue(raw []byte) (types.Operation, []byte) {
	if len(raw) == 0 {
		return types.OperationPut, nil
	}
	return types.Operation(raw[0]), raw[1:]
}
