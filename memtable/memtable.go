// Package memtable adapts the lock-free skiplist to the engine's value
// model: it copies caller-supplied slices into owned buffers on Put and
// reports conflicting writes as an error rather than silently overwriting.
package memtable

import (
	"errors"
	"fmt"

	"github.com/flashcore/elegancekv/skiplist"
)

// ErrPutConflict is returned by Put when the underlying skiplist already
// holds a different value for an equal key. The core never overwrites in
// place; resolving the conflict (versioning, last-writer-wins) is left to
// the caller's outer LSM semantics.
var ErrPutConflict = errors.New("memtable: put conflict")

// MemTable is a thin policy wrapper over skiplist.Skiplist.
type MemTable struct {
	id   uint64
	list *skiplist.Skiplist
}

// New constructs an empty MemTable over a fresh skiplist sized to
// capacityBytes, ordered by cmp, tagged with the caller-assigned id.
func New(id uint64, capacityBytes uint32, cmp skiplist.Comparator) *MemTable {
	return &MemTable{
		id:   id,
		list: skiplist.WithCapacity(cmp, capacityBytes),
	}
}

// ID returns the caller-assigned identity of this memtable.
func (m *MemTable) ID() uint64 {
	return m.id
}

// Get copies out the value stored for an exactly-equal key, if any.
func (m *MemTable) Get(key []byte) ([]byte, bool) {
	v, ok := m.list.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Put copies key and value into owned buffers and inserts them. It returns
// ErrPutConflict if an equal key already holds a different value.
func (m *MemTable) Put(key, value []byte) error {
	keyCopy := append([]byte(nil), key...)
	valueCopy := append([]byte(nil), value...)

	conflict, err := m.list.Put(keyCopy, valueCopy)
	if err != nil {
		return fmt.Errorf("memtable: put: %w", err)
	}
	if conflict != nil {
		return ErrPutConflict
	}
	return nil
}

// Scan returns a half-open range iterator over [lower, upper) per the
// bound semantics of skiplist.Bound.
func (m *MemTable) Scan(lower, upper skiplist.Bound) *skiplist.RangeRef {
	return m.list.NewRangeIterator(lower, upper)
}

// Len returns the number of live entries.
func (m *MemTable) Len() int {
	return m.list.Len()
}

// IsEmpty reports whether the memtable has zero entries.
func (m *MemTable) IsEmpty() bool {
	return m.list.IsEmpty()
}

// MemSize returns the number of arena bytes consumed by the underlying
// skiplist; the outer engine observes this to decide when to freeze and
// flush the memtable.
func (m *MemTable) MemSize() uint32 {
	return m.list.MemSize()
}
