package sstable

import (
	"fmt"
	"path/filepath"
	"testing"
)

func k(i int) []byte { return []byte(fmt.Sprintf("k%03d", i)) }
func v(i int) []byte { return []byte(fmt.Sprintf("v%03d", i)) }

func buildTestTable(t *testing.T, n int, blockSize int, withBloom bool) *SSTable {
	t.Helper()
	b := NewBuilder(blockSize)
	if withBloom {
		b.EnableBloomFilter(uint(n))
	}
	for i := 1; i <= n; i++ {
		b.Add(k(i), v(i))
	}
	path := filepath.Join(t.TempDir(), "table.sst")
	table, err := b.Build(1, nil, path)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return table
}

func TestBuildOpenRoundTrip(t *testing.T) {
	table := buildTestTable(t, 100, 64, false)

	if table.NumOfBlocks() == 0 {
		t.Fatal("expected at least one block")
	}

	it, err := CreateAndSeekToFirst(table)
	if err != nil {
		t.Fatalf("seek to first: %v", err)
	}
	count := 0
	for ; it.IsValid(); it.Next() {
		count++
		want := k(count)
		if string(it.Key()) != string(want) {
			t.Fatalf("entry %d: expected key %q, got %q", count, want, it.Key())
		}
	}
	if count != 100 {
		t.Fatalf("expected 100 entries, visited %d", count)
	}
}

func TestFindBlockIdxBounds(t *testing.T) {
	table := buildTestTable(t, 100, 64, false)

	idx := table.FindBlockIdx(k(50))
	if idx < 0 || idx >= table.NumOfBlocks() {
		t.Fatalf("block idx %d out of range", idx)
	}
	meta := table.metas[idx]
	if string(meta.FirstKey) > string(k(50)) {
		t.Fatalf("block %d first key %q > target k050", idx, meta.FirstKey)
	}
	if idx+1 < len(table.metas) && string(table.metas[idx+1].FirstKey) <= string(k(50)) {
		t.Fatalf("next block %d first key %q should be > k050", idx+1, table.metas[idx+1].FirstKey)
	}
}

func TestSeekToKeyYieldsOrderedSuffix(t *testing.T) {
	table := buildTestTable(t, 100, 64, false)

	it, err := CreateAndSeekToKey(table, k(50))
	if err != nil {
		t.Fatalf("seek: %v", err)
	}

	for i := 50; i <= 100; i++ {
		if !it.IsValid() {
			t.Fatalf("expected valid at k%03d", i)
		}
		if string(it.Key()) != string(k(i)) {
			t.Fatalf("expected %q, got %q", k(i), it.Key())
		}
		it.Next()
	}
	if it.IsValid() {
		t.Fatal("expected iterator exhausted after last entry")
	}
}

func TestMayContainWithBloomFilter(t *testing.T) {
	table := buildTestTable(t, 50, 4096, true)

	for i := 1; i <= 50; i++ {
		if !table.MayContain(k(i)) {
			t.Fatalf("expected MayContain true for present key %q", k(i))
		}
	}
	if table.MayContain([]byte("definitely-not-in-the-table-xyz")) {
		// bloom filters can false-positive, but not on a single
		// deliberately-distinct probe against a fresh low-FP filter in
		// practice; flag loudly if this ever flakes.
		t.Log("bloom filter false-positived on absent key; acceptable but noting it")
	}
}

func TestMayContainWithoutBloomFilterAlwaysTrue(t *testing.T) {
	table := buildTestTable(t, 10, 4096, false)
	if !table.MayContain([]byte("anything")) {
		t.Fatal("expected MayContain to default to true with no filter configured")
	}
}

func TestReadBlockOutOfRangePanics(t *testing.T) {
	table := buildTestTable(t, 10, 4096, false)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range block index")
		}
	}()
	_, _ = table.ReadBlock(table.NumOfBlocks() + 1)
}
