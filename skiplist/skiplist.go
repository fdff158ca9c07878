// Package skiplist implements a lock-free, arena-backed ordered map keyed by
// byte strings under a caller-supplied Comparator. Readers never block;
// writers never take a lock. All memory for nodes, keys, and values is
// carried in a single arena.Arena owned by the Skiplist.
package skiplist

import (
	"errors"
	"math/rand"
	"sync/atomic"
	"unsafe"

	"github.com/flashcore/elegancekv/arena"
)

// ErrEmptyKey is returned by Put when called with a zero-length key.
var ErrEmptyKey = errors.New("skiplist: empty key not allowed")

// Conflict describes a rejected Put: a key already present in the list with
// a different value than the one the caller attempted to insert. The core
// layer never overwrites in place; it reports the conflict and leaves the
// existing entry untouched, leaving resolution (versioning, last-writer-wins,
// tombstones, ...) to the caller's higher-level LSM semantics.
type Conflict struct {
	Key   []byte
	Value []byte
}

// Skiplist is a concurrent ordered map. All exported methods are safe to
// call from multiple goroutines concurrently, including while other
// goroutines are calling Put.
type Skiplist struct {
	arena    *arena.Arena
	cmp      Comparator
	head     *node
	topLevel atomic.Uint32 // current max populated tower height, 0-indexed
	count    atomic.Uint32
}

// WithCapacity builds an empty Skiplist backed by a fresh arena of the
// given byte capacity, ordered by cmp.
func WithCapacity(cmp Comparator, arenaBytes uint32) *Skiplist {
	a := arena.New(arenaBytes)
	head, _, err := newNode(a, nil, nil, MaxHeight-1)
	if err != nil {
		// A freshly constructed arena must have room for one sentinel
		// node; if it doesn't, the caller asked for an unusably small
		// capacity.
		panic(err)
	}
	sl := &Skiplist{arena: a, cmp: cmp, head: head}
	return sl
}

// Len returns the number of live entries.
func (s *Skiplist) Len() int {
	return int(s.count.Load())
}

// IsEmpty reports whether the list has zero entries.
func (s *Skiplist) IsEmpty() bool {
	return s.Len() == 0
}

// MemSize returns the number of arena bytes consumed so far by nodes, keys,
// and values.
func (s *Skiplist) MemSize() uint32 {
	return s.arena.Len()
}

func (s *Skiplist) height() int {
	return int(s.topLevel.Load())
}

func (s *Skiplist) getNode(offset uint32) *node {
	if offset == 0 {
		return nil
	}
	return (*node)(s.arena.Get(offset))
}

func (s *Skiplist) nodeOffset(n *node) uint32 {
	if n == nil {
		return 0
	}
	return s.arena.Offset(unsafe.Pointer(n))
}

func randomHeight() int {
	h := 0
	for h < MaxHeight-1 && rand.Uint32() < HeightIncrease {
		h++
	}
	return h
}

// Get returns the value stored for an exactly-equal key, under the
// Skiplist's comparator.
func (s *Skiplist) Get(key []byte) ([]byte, bool) {
	n := s.findNear(key, false, true)
	if n == nil {
		return nil, false
	}
	if !s.cmp.Same(key, n.key(s.arena)) {
		return nil, false
	}
	return n.value(s.arena), true
}

// Put inserts key/value if no live node has an equal key. If an equal key
// already exists with the same value, Put is a no-op (idempotent). If an
// equal key exists with a different value, Put leaves the list unmodified
// and returns the rejected (key, value) as a Conflict.
func (s *Skiplist) Put(key, value []byte) (*Conflict, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	listHeight := s.height()
	var prev, next [MaxHeight]*node
	prev[listHeight] = s.head

	for level := listHeight; level >= 0; level-- {
		p, n, eq := s.findSpliceForLevel(key, prev[level], level)
		if eq {
			return s.resolveConflict(n, key, value)
		}
		prev[level] = p
		next[level] = n
		if level > 0 {
			prev[level-1] = p
		}
	}

	height := randomHeight()
	if height > listHeight {
		for {
			cur := s.topLevel.Load()
			if height <= int(cur) {
				break
			}
			if s.topLevel.CompareAndSwap(cur, uint32(height)) {
				break
			}
		}
		for i := listHeight + 1; i <= height; i++ {
			prev[i] = s.head
			next[i] = nil
		}
	}

	n, nOffset, err := newNode(s.arena, key, value, height)
	if err != nil {
		return nil, err
	}

	for level := 0; level <= height; level++ {
		for {
			nextOffset := s.nodeOffset(next[level])
			n.tower[level].Store(nextOffset)
			if prev[level].casNextOffset(level, nextOffset, nOffset) {
				break
			}
			p, nx, eq := s.findSpliceForLevel(key, prev[level], level)
			if eq {
				// Another writer linked this key at level 0 first; the
				// node we allocated for this attempt is simply
				// abandoned in the arena (arenas never reclaim
				// individual allocations).
				return s.resolveConflict(nx, key, value)
			}
			prev[level], next[level] = p, nx
		}
	}

	s.count.Add(1)
	return nil, nil
}

func (s *Skiplist) resolveConflict(existing *node, key, value []byte) (*Conflict, error) {
	existingValue := existing.value(s.arena)
	if bytesEqual(existingValue, value) {
		return nil, nil
	}
	keyCopy := append([]byte(nil), key...)
	valueCopy := append([]byte(nil), value...)
	return &Conflict{Key: keyCopy, Value: valueCopy}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// findSpliceForLevel walks right from before at level until the next key is
// >= key, returning (prev, next) such that prev.key < key <= next.key, or
// (prev, nil) if no such next exists. If a node with an exactly-equal key
// is found, it returns (that node, that node, true).
func (s *Skiplist) findSpliceForLevel(key []byte, before *node, level int) (prev, next *node, equal bool) {
	prev = before
	for {
		n := s.getNode(prev.nextOffset(level))
		if n == nil {
			return prev, nil, false
		}
		cmp := s.cmp.Compare(key, n.key(s.arena))
		if cmp == 0 {
			return n, n, true
		}
		if cmp < 0 {
			return prev, n, false
		}
		prev = n
	}
}

// findNear is the core search primitive described in §4.2: it walks down
// from the current top level, following forward pointers while the next
// key is strictly less than key, and resolves the less/allowEqual policy
// once the next key is >= key.
func (s *Skiplist) findNear(key []byte, less, allowEqual bool) *node {
	cursor := s.head
	level := s.height()
	for {
		next := s.getNode(cursor.nextOffset(level))
		if next == nil {
			if level > 0 {
				level--
				continue
			}
			if !less || cursor == s.head {
				return nil
			}
			return cursor
		}

		cmp := s.cmp.Compare(key, next.key(s.arena))
		if cmp > 0 {
			cursor = next
			continue
		}
		if cmp == 0 {
			if allowEqual {
				return next
			}
			if !less {
				return s.getNode(next.nextOffset(0))
			}
			if level > 0 {
				level--
				continue
			}
			if cursor == s.head {
				return nil
			}
			return cursor
		}
		// cmp < 0: next.key > key
		if level > 0 {
			level--
			continue
		}
		if !less {
			return next
		}
		if cursor == s.head {
			return nil
		}
		return cursor
	}
}

func (s *Skiplist) findLast() *node {
	cursor := s.head
	level := s.height()
	for {
		next := s.getNode(cursor.nextOffset(level))
		if next != nil {
			cursor = next
			continue
		}
		if level == 0 {
			if cursor == s.head {
				return nil
			}
			return cursor
		}
		level--
	}
}
