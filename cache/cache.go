// Package cache implements the bounded, concurrent block cache described in
// spec §4.6: a (tableID, blockIdx) -> *block.Block mapping with
// single-flight fill, so concurrent misses on the same key share one disk
// read instead of racing each other.
package cache

import (
	"container/list"
	"fmt"
	"sync"

	"go4.org/syncutil/singleflight"

	"github.com/flashcore/elegancekv/block"
)

type blockKey struct {
	sstID    uint64
	blockIdx uint32
}

func (k blockKey) string() string {
	return fmt.Sprintf("%d:%d", k.sstID, k.blockIdx)
}

// BlockCache is a capacity-bounded cache of decoded blocks. Once full it
// evicts the least recently used block: a hit moves its entry to the back
// of the eviction order, and eviction removes from the front. It never
// negatively caches: a failed fill is returned to the caller and forgotten.
type BlockCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[blockKey]*block.Block
	order    *list.List
	elems    map[blockKey]*list.Element

	fill singleflight.Group
}

// New returns an empty BlockCache bounded to capacity entries.
func New(capacity int) *BlockCache {
	return &BlockCache{
		capacity: capacity,
		entries:  make(map[blockKey]*block.Block),
		order:    list.New(),
		elems:    make(map[blockKey]*list.Element),
	}
}

// GetOrInsert returns the cached block for (sstID, blockIdx), calling fill
// to produce it on a miss. Concurrent misses for the same key collapse
// into a single call to fill; a fill error is returned to every waiter and
// nothing is stored.
func (c *BlockCache) GetOrInsert(sstID uint64, blockIdx uint32, fill func() (*block.Block, error)) (*block.Block, error) {
	key := blockKey{sstID: sstID, blockIdx: blockIdx}

	c.mu.Lock()
	if blk, ok := c.entries[key]; ok {
		c.order.MoveToBack(c.elems[key])
		c.mu.Unlock()
		return blk, nil
	}
	c.mu.Unlock()

	v, err := c.fill.Do(key.string(), func() (interface{}, error) {
		// A fill for this key may have finished between the lookup above
		// and this call; reuse its block instead of filling again.
		c.mu.Lock()
		if blk, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return blk, nil
		}
		c.mu.Unlock()

		blk, err := fill()
		if err != nil {
			return nil, fmt.Errorf("cache: fill %s: %w", key.string(), err)
		}
		c.insert(key, blk)
		return blk, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*block.Block), nil
}

func (c *BlockCache) insert(key blockKey, blk *block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}

	c.entries[key] = blk
	c.elems[key] = c.order.PushBack(key)

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		oldestKey := oldest.Value.(blockKey)
		c.order.Remove(oldest)
		delete(c.entries, oldestKey)
		delete(c.elems, oldestKey)
	}
}

// Len returns the number of blocks currently cached.
func (c *BlockCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
