package skiplist

// BoundType describes how a Bound constrains a range: unbounded (no
// constraint on that side), included (the bound's key itself matches), or
// excluded (the bound's key is the first/last key NOT matched).
type BoundType int

const (
	BoundUnbounded BoundType = iota
	BoundIncluded
	BoundExcluded
)

// Bound is one edge of a RangeRef scan.
type Bound struct {
	Type BoundType
	Key  []byte
}

// Unbounded returns a Bound with no constraint.
func Unbounded() Bound { return Bound{Type: BoundUnbounded} }

// Included returns a Bound that matches key itself.
func Included(key []byte) Bound { return Bound{Type: BoundIncluded, Key: key} }

// Excluded returns a Bound whose key is the boundary but is not itself
// matched.
func Excluded(key []byte) Bound { return Bound{Type: BoundExcluded, Key: key} }

// IterRef is a cursor over the full Skiplist, usable for forward and
// backward traversal. Because the underlying list links nodes only in the
// forward direction, Prev re-derives its position with a fresh findNear
// search rather than following a backward pointer.
type IterRef struct {
	list *Skiplist
	cur  *node
}

// NewIterator returns an unpositioned cursor; call SeekToFirst, SeekToLast,
// Seek, or SeekForPrev before reading Key/Value.
func (s *Skiplist) NewIterator() *IterRef {
	return &IterRef{list: s}
}

// Valid reports whether the cursor currently names a live entry.
func (it *IterRef) Valid() bool {
	return it.cur != nil
}

// Key returns the current entry's key. Valid must be true.
func (it *IterRef) Key() []byte {
	return it.cur.key(it.list.arena)
}

// Value returns the current entry's value. Valid must be true.
func (it *IterRef) Value() []byte {
	return it.cur.value(it.list.arena)
}

// Next advances to the next entry in ascending order.
func (it *IterRef) Next() {
	it.cur = it.list.getNode(it.cur.nextOffset(0))
}

// Prev moves to the entry immediately before the current one in ascending
// order.
func (it *IterRef) Prev() {
	it.cur = it.list.findNear(it.Key(), true, false)
}

// SeekToFirst positions the cursor at the smallest key in the list.
func (it *IterRef) SeekToFirst() {
	it.cur = it.list.getNode(it.list.head.nextOffset(0))
}

// SeekToLast positions the cursor at the largest key in the list.
func (it *IterRef) SeekToLast() {
	it.cur = it.list.findLast()
}

// Seek positions the cursor at the smallest key >= target.
func (it *IterRef) Seek(target []byte) {
	it.cur = it.list.findNear(target, false, true)
}

// SeekForPrev positions the cursor at the largest key <= target.
func (it *IterRef) SeekForPrev(target []byte) {
	it.cur = it.list.findNear(target, true, true)
}

// RangeRef is a StorageIterator-shaped cursor (Key, Value, IsValid, Next)
// clamped to [lower, upper) or the narrower variant implied by the bound
// types supplied at construction.
type RangeRef struct {
	it    *IterRef
	upper Bound
}

// NewRangeIterator returns a RangeRef positioned at the first entry
// satisfying lower, already clamped against upper.
func (s *Skiplist) NewRangeIterator(lower, upper Bound) *RangeRef {
	it := s.NewIterator()
	switch lower.Type {
	case BoundUnbounded:
		it.SeekToFirst()
	case BoundIncluded:
		it.Seek(lower.Key)
	case BoundExcluded:
		it.Seek(lower.Key)
		if it.Valid() && s.cmp.Same(it.Key(), lower.Key) {
			it.Next()
		}
	}
	r := &RangeRef{it: it, upper: upper}
	r.clampUpper()
	return r
}

func (r *RangeRef) clampUpper() {
	if !r.it.Valid() {
		return
	}
	switch r.upper.Type {
	case BoundIncluded:
		if r.it.list.cmp.Compare(r.it.Key(), r.upper.Key) > 0 {
			r.it.cur = nil
		}
	case BoundExcluded:
		if r.it.list.cmp.Compare(r.it.Key(), r.upper.Key) >= 0 {
			r.it.cur = nil
		}
	}
}

// IsValid reports whether the cursor currently names an entry within range.
func (r *RangeRef) IsValid() bool {
	return r.it.Valid()
}

// Key returns the current entry's key. IsValid must be true.
func (r *RangeRef) Key() []byte {
	return r.it.Key()
}

// Value returns the current entry's value. IsValid must be true.
func (r *RangeRef) Value() []byte {
	return r.it.Value()
}

// Next advances to the next in-range entry, invalidating the cursor once
// the upper bound is crossed.
func (r *RangeRef) Next() {
	r.it.Next()
	r.clampUpper()
}
