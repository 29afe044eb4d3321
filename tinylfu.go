package cachecore

// hashdosThreshold is the count-min estimate below which both candidate and
// victim are treated as "unknown" and the candidate automatically loses —
// this defeats a flood of distinct, never-reused keys (a "hash flood" /
// cache-busting attack) from displacing a warm working set one entry at a
// time.
const hashdosThreshold = 6

// climbSampleThreshold is the minimum |delta| in hit/miss ratio that triggers
// a full-size step; below it the previous step is decayed instead.
const climbSampleThreshold = 0.05

// climbStepFactor converts total cache size into a full hill-climbing step.
const climbStepFactor = 0.0625

// climbDecay shrinks the step when the sampled ratio isn't moving much.
const climbDecay = 0.98

// tinyLFU is the adaptive W-TinyLFU admission policy: a small LRU admission
// window feeding a segmented-LRU main region, gated by a count-min sketch
// (optionally behind a bloom doorkeeper) and continuously re-tuned by hill
// climbing the window/main split against the observed hit ratio.
type tinyLFU struct {
	arena *Arena
	hash  HashFunc

	window *lru
	main   *slru

	sketch     *countMinSketch
	doorkeeper *BloomFilter

	size     int
	capacity int

	hitInSample  uint64
	missInSample uint64
	lastHitRatio float64
	step         float64

	hits   uint64
	misses uint64

	randState uint64
}

// newTinyLFU builds a W-TinyLFU policy sized for `capacity` resident
// entries. When withDoorkeeper is true, admission consults a bloom filter
// before touching the sketch at all, so a key seen only once this window
// never pollutes the sketch's counters.
func newTinyLFU(a *Arena, hash HashFunc, capacity int, withDoorkeeper bool) *tinyLFU {
	windowCap := capacity / 100
	if windowCap < 1 {
		windowCap = 1
	}
	mainCap := capacity - windowCap
	t := &tinyLFU{
		arena:     a,
		hash:      hash,
		window:    newLRU(a, windowCap),
		main:      newSLRU(a, mainCap),
		sketch:    newCountMinSketch(capacity),
		capacity:  capacity,
		randState: 0x2545F4914F6CDD1D,
	}
	if withDoorkeeper {
		t.doorkeeper = NewBloomFilter(capacity, 0.01)
	}
	return t
}

func (t *tinyLFU) frequency(key string) uint8 {
	h := t.hash(key)
	return t.sketch.estimate(h)
}

func (t *tinyLFU) recordHash(key string) {
	h := t.hash(key)
	if t.doorkeeper != nil {
		if !t.doorkeeper.PutIfAbsent(h) {
			return
		}
	}
	t.sketch.add(h)
}

func (t *tinyLFU) budgetExhausted() bool {
	return t.hitInSample+t.missInSample > t.sketch.sampleSize
}

// remove unlinks index from whichever list currently owns it. Satisfies the
// remover contract the timer wheel needs during advance.
func (t *tinyLFU) remove(index uint32) {
	if t.arena.At(index).linkID == 0 {
		return
	}
	t.removeFromOwner(index)
	t.size--
}

// clear empties every list this policy owns and resets the adaptive state
// back to what a freshly constructed instance would have.
func (t *tinyLFU) clear() {
	t.window.list.Clear(t.arena)
	t.main.probation.Clear(t.arena)
	t.main.protected.Clear(t.arena)
	windowCap := t.capacity / 100
	if windowCap < 1 {
		windowCap = 1
	}
	t.window.list.SetCap(windowCap)
	t.main.protected.SetCap(int(float64(t.capacity-windowCap) * 0.8))
	t.size = 0
	t.hitInSample, t.missInSample = 0, 0
	t.lastHitRatio, t.step = 0, 0
}

// set admits index — a freshly allocated or already-resident arena entry —
// into the policy, running climb/resize first if the sample budget has
// filled up. It returns the evicted index, if eviction occurred.
func (t *tinyLFU) set(index uint32) (evicted uint32, evictedOK bool) {
	if t.budgetExhausted() {
		t.climb()
		t.resizeWindow()
	}
	e := t.arena.At(index)
	if e.linkID == 0 {
		t.missInSample++
		t.misses++
		// Raw push, not window.insert: window overflow must be handed to
		// evictEntries to move into probation, not evicted here outright.
		t.window.list.pushFront(t.arena, index)
		t.size++
	}
	t.demoteFromProtected()
	return t.evictEntries()
}

// access refreshes the sketch for key and touches/promotes index according
// to which list currently owns it. The caller (Core) is responsible for
// checking expiration before calling access; a policy has no notion of
// "now".
func (t *tinyLFU) access(index uint32) {
	if t.budgetExhausted() {
		t.climb()
		t.resizeWindow()
	}
	e := t.arena.At(index)
	t.recordHash(e.key)
	switch {
	case e.linkID == uint8(t.window.list.ID()):
		t.hitInSample++
		t.hits++
		t.window.access(t.arena, index)
	case e.linkID == uint8(t.main.probation.ID()), e.linkID == uint8(t.main.protected.ID()):
		t.hitInSample++
		t.hits++
		t.main.access(t.arena, index)
	}
}

// demoteFromProtected brings protected back down to its own capacity,
// pushing overflow to the front of probation. SetCap-driven resizing can
// leave protected briefly over-capacity; this restores the invariant.
func (t *tinyLFU) demoteFromProtected() {
	for t.main.protected.Len() > t.main.protected.Cap() {
		tail, ok := t.main.protected.PopTail(t.arena)
		if !ok {
			break
		}
		t.main.probation.InsertFront(t.arena, tail)
	}
}

// evictEntries runs the two-phase eviction: window overflow moves into
// probation, then candidate and victim cursors compare-and-evict until the
// policy is back within capacity.
func (t *tinyLFU) evictEntries() (evicted uint32, evictedOK bool) {
	var candidate uint32
	haveCandidate := false
	for t.window.len() > t.window.list.Cap() {
		tail, ok := t.window.list.PopTail(t.arena)
		if !ok {
			break
		}
		t.main.probation.InsertFront(t.arena, tail)
		if !haveCandidate {
			candidate, haveCandidate = tail, true
		}
	}

	haveCandidateSeed := haveCandidate

	for t.size > t.capacity {
		victim, haveVictim := t.mainVictim()
		if !haveCandidateSeed {
			candidate, haveCandidate = victim, haveVictim
		}
		switch {
		case !haveCandidate && !haveVictim:
			return evicted, evictedOK
		case !haveCandidate:
			evicted, evictedOK = victim, true
			t.removeFromOwner(victim)
			t.size--
		case !haveVictim:
			evicted, evictedOK = candidate, true
			t.removeFromOwner(candidate)
			t.size--
			haveCandidateSeed = false
		case candidate == victim:
			evicted, evictedOK = candidate, true
			t.removeFromOwner(candidate)
			t.size--
			haveCandidateSeed = false
		default:
			loser := t.admit(candidate, victim)
			evicted, evictedOK = loser, true
			t.removeFromOwner(loser)
			t.size--
			if loser == candidate {
				haveCandidateSeed = false
			}
		}
	}
	return evicted, evictedOK
}

// mainVictim returns the current back-of-the-line entry in the main
// region: probation's tail while probation holds anything, then
// protected's, then — once the main region is empty — whatever remains in
// the window.
func (t *tinyLFU) mainVictim() (uint32, bool) {
	if tail, ok := t.main.probation.Tail(t.arena); ok {
		return tail, true
	}
	if tail, ok := t.main.protected.Tail(t.arena); ok {
		return tail, true
	}
	return t.window.list.Tail(t.arena)
}

// admit decides which of candidate/victim survives, per spec: a candidate
// only displaces the victim by a clear frequency edge, with a small random
// floor so a frequency-flood can never fully starve the main region.
func (t *tinyLFU) admit(candidate, victim uint32) (loser uint32) {
	cf := t.frequency(t.arena.At(candidate).key)
	vf := t.frequency(t.arena.At(victim).key)
	if cf > vf {
		return victim
	}
	if cf < hashdosThreshold && vf < hashdosThreshold {
		return candidate
	}
	if t.next128() == 0 {
		return victim
	}
	return candidate
}

func (t *tinyLFU) removeFromOwner(index uint32) {
	e := t.arena.At(index)
	switch e.linkID {
	case uint8(t.window.list.ID()):
		t.window.remove(t.arena, index)
	case uint8(t.main.probation.ID()):
		t.main.probation.Remove(t.arena, index)
	case uint8(t.main.protected.ID()):
		t.main.protected.Remove(t.arena, index)
	}
}

// climb recomputes the sampled hit ratio and step direction/magnitude, then
// resets the sampling counters for the next window.
func (t *tinyLFU) climb() {
	if t.missInSample == 0 {
		t.hitInSample, t.missInSample = 0, 0
		return
	}
	sampleHR := float64(t.hitInSample) / float64(t.missInSample)
	delta := sampleHR - t.lastHitRatio
	t.lastHitRatio = sampleHR

	var direction float64 = 1
	if t.step < 0 {
		direction = -1
	}
	if delta < 0 {
		direction = -direction
	}

	var magnitude float64
	if abs(delta) >= climbSampleThreshold {
		magnitude = float64(t.capacity) * climbStepFactor
	} else {
		magnitude = abs(t.step) * climbDecay
	}
	t.step = direction * magnitude
	t.hitInSample, t.missInSample = 0, 0
}

// resizeWindow shifts the amount computed in climb from protected's
// capacity to the window's (or back, when negative), demotes whatever no
// longer fits in protected to probation, then moves that many entries
// between the window and the main region; capacity the move could not use
// is handed back.
func (t *tinyLFU) resizeWindow() {
	amount := int(t.step)
	if amount == 0 {
		return
	}
	if amount >= t.window.list.Cap() {
		amount = t.window.list.Cap() - 1
	}
	if amount <= -t.main.maxsize {
		amount = -(t.main.maxsize - 1)
	}
	if amount == 0 {
		return
	}

	t.window.list.SetCap(t.window.list.Cap() + amount)
	t.main.protected.SetCap(t.main.protected.Cap() - amount)
	t.demoteFromProtected()

	moved := 0
	if amount > 0 {
		for i := 0; i < amount; i++ {
			tail, ok := t.main.probation.Tail(t.arena)
			if !ok {
				tail, ok = t.main.protected.PopTail(t.arena)
				if !ok {
					break
				}
				t.window.list.InsertFront(t.arena, tail)
				moved++
				continue
			}
			t.main.probation.Remove(t.arena, tail)
			t.window.list.InsertFront(t.arena, tail)
			moved++
		}
	} else {
		for i := 0; i < -amount; i++ {
			tail, ok := t.window.list.Tail(t.arena)
			if !ok {
				break
			}
			t.window.list.Remove(t.arena, tail)
			t.main.probation.InsertFront(t.arena, tail)
			moved++
		}
	}

	requested := amount
	if requested < 0 {
		requested = -requested
	}
	if shortfall := requested - moved; shortfall > 0 {
		// Fewer entries were actually available to move than the climb step
		// asked for; pull the unused capacity back so window/protected stay
		// sized to what's really there instead of drifting empty headroom.
		if amount > 0 {
			t.window.list.SetCap(t.window.list.Cap() - shortfall)
			t.main.protected.SetCap(t.main.protected.Cap() + shortfall)
		} else {
			t.window.list.SetCap(t.window.list.Cap() + shortfall)
			t.main.protected.SetCap(t.main.protected.Cap() - shortfall)
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// next128 draws from a small splitmix64 generator private to this policy and
// returns the draw modulo 128, so the admission floor's randomness never
// needs a shared global or a lock.
func (t *tinyLFU) next128() uint64 {
	t.randState += 0x9E3779B97F4A7C15
	z := t.randState
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return z % 128
}
