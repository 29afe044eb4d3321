package cachecore

import "testing"

type collectingSink struct {
	expired map[string]bool
}

func (s *collectingSink) DelItem(key string, index uint32) {
	if s.expired == nil {
		s.expired = make(map[string]bool)
	}
	s.expired[key] = true
}

type noopRemover struct{}

func (noopRemover) remove(index uint32) {}

// TestTimerWheelCascade is the S5 scenario: seven keys scheduled at
// increasingly distant deadlines, advanced in stages, each stage expiring
// exactly the keys whose deadlines have passed.
func TestTimerWheelCascade(t *testing.T) {
	a := NewArena(16)
	const second = uint64(1_000_000_000)
	now := uint64(1_000_000) * second // arbitrary non-zero epoch
	w := newTimerWheel(a, now)

	deadlines := map[string]uint64{
		"k1": now + 1*second,
		"k2": now + 10*second,
		"k3": now + 30*second,
		"k4": now + 120*second,
		"k5": now + 6500*second,
		"k6": now + 142000*second,
		"k7": now + 1420000*second,
	}
	for key, at := range deadlines {
		e := a.GetOrCreate(key)
		e.SetExpire(at)
		w.schedule(e.index)
	}

	sink := &collectingSink{}
	rem := noopRemover{}

	w.advance(now+64*second, sink, rem)
	assertExpired(t, sink, "stage 1", "k1", "k2", "k3")

	sink.expired = nil
	w.advance(now+200*second, sink, rem)
	assertExpired(t, sink, "stage 2", "k4")

	sink.expired = nil
	w.advance(now+12000*second, sink, rem)
	assertExpired(t, sink, "stage 3", "k5")

	sink.expired = nil
	w.advance(now+350000*second, sink, rem)
	assertExpired(t, sink, "stage 4", "k6")

	sink.expired = nil
	w.advance(now+1520000*second, sink, rem)
	assertExpired(t, sink, "stage 5", "k7")
}

func assertExpired(t *testing.T, s *collectingSink, stage string, want ...string) {
	t.Helper()
	if len(s.expired) != len(want) {
		t.Fatalf("%s: expired %v, want exactly %v", stage, s.expired, want)
	}
	for _, k := range want {
		if !s.expired[k] {
			t.Fatalf("%s: expected %q to expire, got %v", stage, k, s.expired)
		}
	}
}

func TestTimerWheelDescheduleIsIdempotent(t *testing.T) {
	a := NewArena(16)
	w := newTimerWheel(a, 0)
	e := a.GetOrCreate("k")
	e.SetExpire(1000)
	w.schedule(e.index)
	w.deschedule(e.index)
	w.deschedule(e.index) // must not panic
}

func TestTimerWheelNeverExpiresNoTTL(t *testing.T) {
	a := NewArena(16)
	w := newTimerWheel(a, 0)
	e := a.GetOrCreate("forever")
	e.SetExpire(0)
	w.schedule(e.index)

	sink := &collectingSink{}
	w.advance(1_000_000_000_000, sink, noopRemover{})
	if len(sink.expired) != 0 {
		t.Fatalf("a never-expiring entry was reported expired: %v", sink.expired)
	}
}
