package sstable

import (
	"bytes"
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"
)

// bloomFilter wraps bloom.BloomFilter with the encode/decode pair used for
// the SSTable's optional trailing bloom region.
type bloomFilter struct {
	filter *bloom.BloomFilter
}

// newBloomFilter sizes a filter for n expected keys at the given false
// positive rate.
func newBloomFilter(n uint, falsePositiveRate float64) *bloomFilter {
	return &bloomFilter{filter: bloom.NewWithEstimates(n, falsePositiveRate)}
}

func (b *bloomFilter) add(key []byte) {
	b.filter.Add(key)
}

func (b *bloomFilter) test(key []byte) bool {
	return b.filter.Test(key)
}

// encode serializes the filter via its own WriteTo, so the on-disk bloom
// region is exactly the library's native bit-array encoding.
func (b *bloomFilter) encode() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.filter.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("sstable: encode bloom filter: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeBloomFilter(data []byte) (*bloomFilter, error) {
	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: bloom filter: %v", ErrMalformedSST, err)
	}
	return &bloomFilter{filter: filter}, nil
}
