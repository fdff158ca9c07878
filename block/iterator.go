package block

import (
	"bytes"
	"sort"
)

// Iterator is a single-threaded cursor over a Block's entries in key
// order. It is not safe for concurrent use; callers needing concurrent
// reads of the same Block should each construct their own Iterator.
type Iterator struct {
	block *Block
	idx   int
	key   []byte
	value []byte
}

// CreateAndSeekToFirst returns an Iterator positioned at the block's first
// entry, or an invalid iterator if the block is empty.
func CreateAndSeekToFirst(b *Block) *Iterator {
	it := &Iterator{block: b}
	it.seekTo(0)
	return it
}

// CreateAndSeekToKey returns an Iterator positioned at the smallest entry
// whose key is >= key.
func CreateAndSeekToKey(b *Block, key []byte) *Iterator {
	it := &Iterator{block: b}
	it.SeekToKey(key)
	return it
}

// IsValid reports whether the cursor names a live entry. An iterator past
// the last entry, or over an empty block, is invalid and signaled by an
// empty key.
func (it *Iterator) IsValid() bool {
	return len(it.key) > 0
}

// Key returns the current entry's key. IsValid must be true.
func (it *Iterator) Key() []byte {
	return it.key
}

// Value returns the current entry's value. IsValid must be true.
func (it *Iterator) Value() []byte {
	return it.value
}

// Next advances to the next entry in key order, invalidating the cursor
// once the index exits range.
func (it *Iterator) Next() {
	it.seekTo(it.idx + 1)
}

// seekTo positions the cursor at the entry with index idx.
func (it *Iterator) seekTo(idx int) {
	it.idx = idx
	if idx >= it.block.NumEntries() {
		it.key, it.value = nil, nil
		return
	}
	it.key, it.value = it.block.entryAt(it.block.Offsets[idx])
}

// SeekToKey positions the cursor at the smallest entry whose key is >=
// key, via a binary search over the block's offset index. If every entry's
// key is < key, the cursor becomes invalid.
func (it *Iterator) SeekToKey(key []byte) {
	n := it.block.NumEntries()
	idx := sort.Search(n, func(i int) bool {
		k, _ := it.block.entryAt(it.block.Offsets[i])
		return bytes.Compare(k, key) >= 0
	})
	it.seekTo(idx)
}
