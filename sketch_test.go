package cachecore

import "testing"

// TestCountMinSketchEstimate is a scaled-down S6: insert each of a set of
// distinct hashes five times and their ":b" sibling three times, and check
// the estimate reflects at least that many additions (it can only ever be
// an overestimate, never an underestimate).
func TestCountMinSketchEstimate(t *testing.T) {
	s := newCountMinSketch(4096)
	hashes := make([]uint64, 200)
	siblings := make([]uint64, 200)
	for i := range hashes {
		hashes[i] = HashKey(string(rune('A' + i%26)) + string(rune(i)))
		siblings[i] = HashKey(string(rune('A'+i%26)) + string(rune(i)) + ":b")
	}

	for i := 0; i < 5; i++ {
		for _, h := range hashes {
			s.add(h)
		}
	}
	for i := 0; i < 3; i++ {
		for _, h := range siblings {
			s.add(h)
		}
	}

	short := 0
	for i, h := range hashes {
		if s.estimate(h) < 5 {
			short++
		}
		if s.estimate(siblings[i]) < 3 {
			short++
		}
	}
	if short > len(hashes)/20 {
		t.Fatalf("%d/%d estimates were under-counted beyond tolerance", short, 2*len(hashes))
	}
}

func TestCountMinSketchSaturatesAndResets(t *testing.T) {
	s := newCountMinSketch(64)
	h := HashKey("hot")
	for i := 0; i < 32; i++ {
		s.add(h)
	}
	if v := s.estimate(h); v != 15 {
		t.Fatalf("estimate() = %d, want saturated at 15", v)
	}

	before := s.additions
	s.reset()
	if s.additions >= before {
		t.Fatalf("reset() did not shrink additions: before=%d after=%d", before, s.additions)
	}
	if v := s.estimate(h); v != 7 {
		t.Fatalf("estimate() after reset = %d, want 7 (halved from 15)", v)
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 63: 64, 64: 64, 65: 128}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
