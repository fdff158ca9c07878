package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/flashcore/elegancekv/block"
)

func TestGetOrInsertFillsOnce(t *testing.T) {
	c := New(10)

	var calls atomic.Int32
	fill := func() (*block.Block, error) {
		calls.Add(1)
		return &block.Block{Data: []byte("x")}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrInsert(1, 0, fill); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one fill call, got %d", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached entry, got %d", c.Len())
	}
}

func TestGetOrInsertDistinctKeys(t *testing.T) {
	c := New(10)

	for i := uint32(0); i < 5; i++ {
		idx := i
		blk, err := c.GetOrInsert(1, idx, func() (*block.Block, error) {
			return &block.Block{Data: []byte{byte(idx)}}, nil
		})
		if err != nil {
			t.Fatalf("fill %d: %v", idx, err)
		}
		if blk.Data[0] != byte(idx) {
			t.Fatalf("expected block for idx %d, got %v", idx, blk.Data)
		}
	}
	if c.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", c.Len())
	}
}

func TestGetOrInsertFillErrorNotCached(t *testing.T) {
	c := New(10)
	wantErr := errors.New("disk fell over")

	_, err := c.GetOrInsert(1, 0, func() (*block.Block, error) {
		return nil, wantErr
	})
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if c.Len() != 0 {
		t.Fatalf("expected failed fill not to be cached, got %d entries", c.Len())
	}

	// a subsequent successful fill for the same key must still work.
	blk, err := c.GetOrInsert(1, 0, func() (*block.Block, error) {
		return &block.Block{Data: []byte("ok")}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if string(blk.Data) != "ok" {
		t.Fatalf("unexpected block: %v", blk.Data)
	}
}

func TestEvictionBoundsSize(t *testing.T) {
	c := New(3)
	for i := uint32(0); i < 10; i++ {
		idx := i
		if _, err := c.GetOrInsert(1, idx, func() (*block.Block, error) {
			return &block.Block{Data: []byte{byte(idx)}}, nil
		}); err != nil {
			t.Fatalf("fill %d: %v", idx, err)
		}
	}
	if c.Len() > 3 {
		t.Fatalf("expected capacity to bound cache size, got %d entries", c.Len())
	}
}
