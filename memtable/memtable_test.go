package memtable

import (
	"fmt"
	"testing"

	"github.com/flashcore/elegancekv/skiplist"
)

func TestPutGetRoundTrip(t *testing.T) {
	m := New(1, 1<<16, skiplist.BytewiseComparator{})

	if err := m.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok := m.Get([]byte("a"))
	if !ok || string(v) != "1" {
		t.Fatalf("expected (1,true), got (%q,%v)", v, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("expected len 1, got %d", m.Len())
	}
}

func TestPutConflictSurfacesAsError(t *testing.T) {
	m := New(1, 1<<16, skiplist.BytewiseComparator{})

	if err := m.Put([]byte("a"), []byte("1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := m.Put([]byte("a"), []byte("2")); err != ErrPutConflict {
		t.Fatalf("expected ErrPutConflict, got %v", err)
	}
	v, _ := m.Get([]byte("a"))
	if string(v) != "1" {
		t.Fatalf("expected original value to survive, got %q", v)
	}
}

func TestPutCopiesCallerBuffers(t *testing.T) {
	m := New(1, 1<<16, skiplist.BytewiseComparator{})

	key := []byte("mutable-key")
	val := []byte("mutable-val")
	if err := m.Put(key, val); err != nil {
		t.Fatalf("put: %v", err)
	}

	key[0] = 'X'
	val[0] = 'X'

	v, ok := m.Get([]byte("mutable-key"))
	if !ok || string(v) != "mutable-val" {
		t.Fatalf("expected stored value unaffected by caller mutation, got %q ok=%v", v, ok)
	}
}

func TestScanHalfOpenRange(t *testing.T) {
	m := New(1, 1<<20, skiplist.BytewiseComparator{})
	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("k%02d", i))
		if err := m.Put(key, key); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	r := m.Scan(skiplist.Included([]byte("k02")), skiplist.Excluded([]byte("k05")))
	var got []string
	for ; r.IsValid(); r.Next() {
		got = append(got, string(r.Key()))
	}
	want := []string{"k02", "k03", "k04"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
