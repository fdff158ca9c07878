package arena

import (
	"sync"
	"testing"
)

func TestAllocAlignment(t *testing.T) {
	a := New(1024)

	off, err := a.Alloc(8, 8)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if off%8 != 0 {
		t.Fatalf("expected 8-byte aligned offset, got %d", off)
	}

	off2, err := a.Alloc(3, 1)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if off2 != off+8 {
		t.Fatalf("expected contiguous offset %d, got %d", off+8, off2)
	}
}

func TestGetOffsetRoundTrip(t *testing.T) {
	a := New(64)

	off, err := a.Alloc(16, 8)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}

	ptr := a.Get(off)
	if ptr == nil {
		t.Fatal("expected non-nil pointer")
	}
	if got := a.Offset(ptr); got != off {
		t.Fatalf("expected offset %d, got %d", off, got)
	}
}

func TestNullOffset(t *testing.T) {
	a := New(64)
	if a.Get(0) != nil {
		t.Fatal("expected nil pointer for null offset")
	}
	if a.Offset(nil) != 0 {
		t.Fatal("expected 0 offset for nil pointer")
	}
}

func TestOutOfSpace(t *testing.T) {
	a := New(8)

	if _, err := a.Alloc(8, 1); err != nil {
		t.Fatalf("unexpected error on first alloc: %v", err)
	}
	if _, err := a.Alloc(1, 1); err != ErrOutOfSpace {
		t.Fatalf("expected ErrOutOfSpace, got %v", err)
	}
}

func TestConcurrentAlloc(t *testing.T) {
	const n = 200
	// The first 8-aligned offset is 8 (offset 0 is the sentinel), so n
	// 16-byte allocations need n*16 bytes plus that leading padding.
	a := New(n*16 + 8)

	var wg sync.WaitGroup
	offsets := make([]uint32, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			off, err := a.Alloc(16, 8)
			if err != nil {
				t.Error(err)
				return
			}
			offsets[i] = off
		}(i)
	}
	wg.Wait()

	seen := make(map[uint32]bool, n)
	for _, off := range offsets {
		if seen[off] {
			t.Fatalf("duplicate offset %d handed out", off)
		}
		seen[off] = true
	}
}

func TestGetBytesWrite(t *testing.T) {
	a := New(32)
	off, err := a.Alloc(5, 1)
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	b := a.GetBytes(off, 5)
	copy(b, "hello")

	b2 := a.GetBytes(off, 5)
	if string(b2) != "hello" {
		t.Fatalf("expected hello, got %q", b2)
	}
}
