package sstable

import (
	"fmt"
	"os"

	"github.com/flashcore/elegancekv/block"
)

// Iterator is a single-threaded cursor over an SSTable's entries in key
// order, transparently crossing block boundaries via ReadBlockCached.
type Iterator struct {
	table    *SSTable
	blockIdx int
	blockIt  *block.Iterator
}

// CreateAndSeekToFirst returns an Iterator positioned at the table's first
// entry. An empty table yields an invalid iterator.
func CreateAndSeekToFirst(t *SSTable) (*Iterator, error) {
	it := &Iterator{table: t}
	if t.NumOfBlocks() == 0 {
		return it, nil
	}
	blk, err := t.ReadBlockCached(0)
	if err != nil {
		return nil, err
	}
	it.blockIt = block.CreateAndSeekToFirst(blk)
	return it, nil
}

// CreateAndSeekToKey returns an Iterator positioned at the smallest entry
// whose key is >= key.
func CreateAndSeekToKey(t *SSTable, key []byte) (*Iterator, error) {
	it := &Iterator{table: t}
	if err := it.SeekToKey(key); err != nil {
		return nil, err
	}
	return it, nil
}

// SeekToFirst repositions the iterator at the table's first entry.
func (it *Iterator) SeekToFirst() error {
	if it.table.NumOfBlocks() == 0 {
		it.blockIt = nil
		return nil
	}
	blk, err := it.table.ReadBlockCached(0)
	if err != nil {
		return err
	}
	it.blockIdx = 0
	it.blockIt = block.CreateAndSeekToFirst(blk)
	return nil
}

// SeekToKey repositions the iterator at the smallest entry whose key is
// >= key.
func (it *Iterator) SeekToKey(key []byte) error {
	idx := it.table.FindBlockIdx(key)
	if idx >= it.table.NumOfBlocks() {
		it.blockIt = nil
		return nil
	}
	blk, err := it.table.ReadBlockCached(idx)
	if err != nil {
		return err
	}
	it.blockIdx = idx
	it.blockIt = block.CreateAndSeekToKey(blk, key)

	for !it.blockIt.IsValid() && it.blockIdx+1 < it.table.NumOfBlocks() {
		it.blockIdx++
		blk, err = it.table.ReadBlockCached(it.blockIdx)
		if err != nil {
			return err
		}
		it.blockIt = block.CreateAndSeekToFirst(blk)
	}
	return nil
}

// IsValid reports whether the cursor currently names a live entry.
func (it *Iterator) IsValid() bool {
	return it.blockIt != nil && it.blockIt.IsValid()
}

// Key returns the current entry's key. IsValid must be true.
func (it *Iterator) Key() []byte {
	return it.blockIt.Key()
}

// Value returns the current entry's value. IsValid must be true.
func (it *Iterator) Value() []byte {
	return it.blockIt.Value()
}

// Next advances the inner block iterator, loading the next block and
// re-seeking to its first entry when the current block is exhausted.
func (it *Iterator) Next() {
	it.blockIt.Next()
	for !it.blockIt.IsValid() && it.blockIdx+1 < it.table.NumOfBlocks() {
		it.blockIdx++
		blk, err := it.table.ReadBlockCached(it.blockIdx)
		if err != nil {
			// StorageIterator.Next has no error return; a block that
			// fails to load mid-scan (e.g. the file disappeared) leaves
			// the iterator invalid rather than panicking.
			fmt.Fprintf(os.Stderr, "sstable: iterator: read block %d: %v\n", it.blockIdx, err)
			it.blockIt = nil
			return
		}
		it.blockIt = block.CreateAndSeekToFirst(blk)
	}
}
