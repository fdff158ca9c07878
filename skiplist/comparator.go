package skiplist

import "bytes"

// Comparator is a caller-supplied total order over byte-string keys. The
// skiplist never assumes lexicographic byte order itself; it always goes
// through a Comparator so callers can encode versioning, suffix timestamps,
// or other key schemes into the ordering.
type Comparator interface {
	// Compare returns a negative number if a < b, zero if a == b, and a
	// positive number if a > b, under this comparator's order.
	Compare(a, b []byte) int
	// Same reports whether a and b name the same logical key under this
	// comparator (equivalent to Compare(a, b) == 0, but a dedicated method
	// lets a comparator short-circuit without doing a full ordering compare).
	Same(a, b []byte) bool
}

// FixedLengthSuffixComparator strips a fixed-length suffix (e.g. an
// embedded timestamp or sequence number) from the tail of each key before
// ordering, and reports equality only when the remaining prefixes match.
// Keys shorter than the suffix length compare using an empty prefix.
type FixedLengthSuffixComparator struct {
	SuffixLen int
}

// NewFixedLengthSuffixComparator returns a comparator that strips the last
// n bytes of each key before comparing.
func NewFixedLengthSuffixComparator(n int) FixedLengthSuffixComparator {
	return FixedLengthSuffixComparator{SuffixLen: n}
}

func (c FixedLengthSuffixComparator) prefix(key []byte) []byte {
	if len(key) <= c.SuffixLen {
		return key[:0]
	}
	return key[:len(key)-c.SuffixLen]
}

func (c FixedLengthSuffixComparator) Compare(a, b []byte) int {
	return bytes.Compare(c.prefix(a), c.prefix(b))
}

func (c FixedLengthSuffixComparator) Same(a, b []byte) bool {
	return bytes.Equal(c.prefix(a), c.prefix(b))
}

// BytewiseComparator orders keys by plain lexicographic byte comparison,
// with no suffix stripped. Useful for block- and SSTable-level key
// ordering, where keys already carry no trailing version suffix.
type BytewiseComparator struct{}

func (BytewiseComparator) Compare(a, b []byte) int { return bytes.Compare(a, b) }
func (BytewiseComparator) Same(a, b []byte) bool   { return bytes.Equal(a, b) }
