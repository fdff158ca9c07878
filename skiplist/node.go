package skiplist

import (
	"sync/atomic"
	"unsafe"

	"github.com/flashcore/elegancekv/arena"
)

// MaxHeight bounds the tower height of any node: towers are indexed
// [0, MaxHeight).
const MaxHeight = 20

// HeightIncrease is the numerator over math.MaxUint32 used to decide
// whether a new node's tower grows another level; HeightIncrease/MaxUint32
// is approximately 1/3, matching the original skiplist's height
// distribution.
const HeightIncrease = (1 << 32) / 3

// node lives entirely inside an arena.Arena. Its tower is declared with the
// maximum possible height, but only height+1 of its slots are ever backed
// by arena memory: the allocator reserves exactly the bytes needed for the
// node's actual height, so code must never read tower[i] for i > height.
// This mirrors the original arena-backed skiplist design (and several
// production Go LSM ports): the "extra" tower capacity is a compile-time
// type, not a runtime allocation.
type node struct {
	keyOffset   uint32
	keySize     uint32
	valueOffset uint32
	valueSize   uint32
	height      uint32
	tower       [MaxHeight]atomic.Uint32
}

var nodeBaseSize = uint32(unsafe.Offsetof(node{}.tower))
var towerSlotSize = uint32(unsafe.Sizeof(atomic.Uint32{}))
var nodeAlign = uint32(unsafe.Alignof(node{}))

// newNode copies key and value into the arena and allocates a node with a
// tower truncated to height+1 slots.
func newNode(a *arena.Arena, key, value []byte, height int) (*node, uint32, error) {
	keyOffset, err := a.Alloc(uint32(len(key)), 1)
	if err != nil {
		return nil, 0, err
	}
	copy(a.GetBytes(keyOffset, uint32(len(key))), key)

	var valueOffset uint32
	if len(value) > 0 {
		valueOffset, err = a.Alloc(uint32(len(value)), 1)
		if err != nil {
			return nil, 0, err
		}
		copy(a.GetBytes(valueOffset, uint32(len(value))), value)
	}

	size := nodeBaseSize + uint32(height+1)*towerSlotSize
	nodeOffset, err := a.Alloc(size, nodeAlign)
	if err != nil {
		return nil, 0, err
	}

	n := (*node)(a.Get(nodeOffset))
	n.keyOffset = keyOffset
	n.keySize = uint32(len(key))
	n.valueOffset = valueOffset
	n.valueSize = uint32(len(value))
	n.height = uint32(height)
	for i := 0; i <= height; i++ {
		n.tower[i].Store(0)
	}
	return n, nodeOffset, nil
}

func (n *node) key(a *arena.Arena) []byte {
	return a.GetBytes(n.keyOffset, n.keySize)
}

func (n *node) value(a *arena.Arena) []byte {
	return a.GetBytes(n.valueOffset, n.valueSize)
}

func (n *node) nextOffset(level int) uint32 {
	return n.tower[level].Load()
}

func (n *node) casNextOffset(level int, old, newOffset uint32) bool {
	return n.tower[level].CompareAndSwap(old, newOffset)
}
