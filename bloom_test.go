package cachecore

import "testing"

func TestBloomFilterMightContain(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	h := HashKey("present")
	if b.MightContain(h) {
		t.Fatal("MightContain true before any Put")
	}
	b.Put(h)
	if !b.MightContain(h) {
		t.Fatal("MightContain false right after Put")
	}
}

func TestBloomFilterPutIfAbsent(t *testing.T) {
	b := NewBloomFilter(1000, 0.01)
	h := HashKey("key")
	if b.PutIfAbsent(h) {
		t.Fatal("PutIfAbsent reported already-present on first call")
	}
	if !b.PutIfAbsent(h) {
		t.Fatal("PutIfAbsent reported absent on second call")
	}
}

// TestBloomFilterSelfResets pins the exact additions boundary: the counter
// increments before the reset check, so it reaches (and is seen at) the
// sized insertion count on the very call that triggers the reset, then
// continues from zero on the next call — mirroring filter.rs's put().
func TestBloomFilterSelfResets(t *testing.T) {
	b := NewBloomFilter(8, 0.1)
	for i := uint64(1); i < 8; i++ {
		b.Put(HashKey(string(rune('a' + i))))
		if b.additions != i {
			t.Fatalf("after %d puts, additions = %d, want %d", i, b.additions, i)
		}
	}

	b.Put(HashKey("wraps")) // the 8th put: additions hits 8 and resets to 0
	if b.additions != 0 {
		t.Fatalf("additions = %d on the wrapping put, want 0", b.additions)
	}

	b.Put(HashKey("after-wrap"))
	if b.additions != 1 {
		t.Fatalf("additions = %d after the wrap, want 1", b.additions)
	}
}

func TestBloomFilterClear(t *testing.T) {
	b := NewBloomFilter(100, 0.01)
	b.Put(HashKey("x"))
	b.Clear()
	if b.MightContain(HashKey("x")) {
		t.Fatal("MightContain true after Clear")
	}
	if b.additions != 0 {
		t.Fatalf("additions = %d after Clear, want 0", b.additions)
	}
}
