package cachecore

// Config drives construction of every Core flavor, mirroring the teacher's
// own Config-driven New. Size is the resident capacity; HashFunc defaults
// to HashKey when left nil; Doorkeeper only matters to TlfuCore.
type Config struct {
	Size       int
	HashFunc   func(string) uint64
	Doorkeeper bool
}

func (c Config) hashFunc() HashFunc {
	if c.HashFunc != nil {
		return c.HashFunc
	}
	return HashKey
}

// SetResult is what LruCore.Set and TlfuCore.Set return: the index that now holds key
// (freshly allocated or already resident), and — if the policy evicted
// something to make room — that victim's index and key.
type SetResult struct {
	Index       uint32
	Evicted     bool
	EvictedIdx  uint32
	EvictedKey  string
}

// LruCore is the engine façade over a plain bounded LRU: one arena, one
// policy list, one timer wheel.
type LruCore struct {
	arena *Arena
	hash  HashFunc
	wheel *timerWheel
	list  *lru

	stats Stats
}

// NewLruCore builds an LRU-policy engine instance for cfg.Size resident
// entries.
func NewLruCore(cfg Config, nowNs uint64) *LruCore {
	a := NewArena(cfg.Size)
	return &LruCore{
		arena: a,
		hash:  cfg.hashFunc(),
		wheel: newTimerWheel(a, nowNs),
		list:  newLRU(a, cfg.Size),
	}
}

// Set inserts or refreshes key with the given TTL (0 = never expires),
// scheduling it in the timer wheel and admitting it into the LRU.
func (c *LruCore) Set(key string, ttlNs uint64) SetResult {
	if isReservedKey(key) {
		panicInvariant("cachecore: %q is a reserved key", key)
	}
	e := c.arena.GetOrCreate(key)
	e.SetExpire(expireAt(ttlNs, c.wheel.nanos))
	c.wheel.schedule(e.index)

	var evicted uint32
	var evictedOK bool
	if e.linkID == 0 {
		c.stats.Misses++
		evicted, evictedOK = c.list.insert(c.arena, e.index)
	} else {
		c.list.access(c.arena, e.index)
	}
	result := SetResult{Index: e.index}
	if evictedOK {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedIdx = evicted
		evKey := c.arena.At(evicted).Key()
		result.EvictedKey = evKey
		c.wheel.deschedule(evicted)
		c.arena.Remove(evicted)
	}
	return result
}

// Access reports whether key is resident and not expired, touching it to
// the front of the LRU if so.
func (c *LruCore) Access(key string, nowNs uint64) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		c.stats.Misses++
		return 0, false
	}
	e := c.arena.At(idx)
	if e.Expire() != 0 && e.Expire() <= nowNs {
		c.stats.Misses++
		return 0, false
	}
	c.list.access(c.arena, idx)
	c.stats.Hits++
	return idx, true
}

// Remove fully detaches key from the wheel, policy, and arena.
func (c *LruCore) Remove(key string) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		return 0, false
	}
	c.wheel.deschedule(idx)
	c.list.remove(c.arena, idx)
	c.arena.Remove(idx)
	return idx, true
}

// remove implements the remover contract the wheel uses during advance.
func (c *LruCore) remove(index uint32) {
	c.list.remove(c.arena, index)
}

// Advance expires every entry whose deadline has passed as of nowNs.
func (c *LruCore) Advance(nowNs uint64, sink Sink) {
	before := c.arena.Len()
	c.wheel.advance(nowNs, sink, c)
	c.stats.Expirations += uint64(before - c.arena.Len())
}

// Clear resets the cache to empty.
func (c *LruCore) Clear() {
	c.list.clear(c.arena)
	c.wheel.clear()
	c.arena.Clear()
}

// Len reports the number of resident entries.
func (c *LruCore) Len() int { return c.arena.Len() }

// Stats returns a snapshot of this core's counters.
func (c *LruCore) Stats() Stats { return c.stats }

// TlfuCore is the engine façade over the adaptive W-TinyLFU policy.
type TlfuCore struct {
	arena *Arena
	hash  HashFunc
	wheel *timerWheel
	tlfu  *tinyLFU

	stats Stats
}

// NewTlfuCore builds a W-TinyLFU engine instance for cfg.Size resident
// entries.
func NewTlfuCore(cfg Config, nowNs uint64) *TlfuCore {
	a := NewArena(cfg.Size)
	hash := cfg.hashFunc()
	return &TlfuCore{
		arena: a,
		hash:  hash,
		wheel: newTimerWheel(a, nowNs),
		tlfu:  newTinyLFU(a, hash, cfg.Size, cfg.Doorkeeper),
	}
}

// Set inserts or refreshes key with the given TTL, running TinyLFU's
// admission/eviction machinery.
func (c *TlfuCore) Set(key string, ttlNs uint64) SetResult {
	if isReservedKey(key) {
		panicInvariant("cachecore: %q is a reserved key", key)
	}
	e := c.arena.GetOrCreate(key)
	e.SetExpire(expireAt(ttlNs, c.wheel.nanos))
	c.wheel.schedule(e.index)

	evicted, evictedOK := c.tlfu.set(e.index)
	result := SetResult{Index: e.index}
	if evictedOK {
		if evicted == e.index {
			// The candidate just inserted is the one that lost admission,
			// not some older resident being displaced.
			c.stats.Rejections++
		} else {
			c.stats.Evictions++
		}
		result.Evicted = true
		result.EvictedIdx = evicted
		result.EvictedKey = c.arena.At(evicted).Key()
		c.wheel.deschedule(evicted)
		c.arena.Remove(evicted)
	}
	return result
}

// Access reports whether key is resident and not expired, refreshing its
// sketch/list standing if so.
func (c *TlfuCore) Access(key string, nowNs uint64) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		c.stats.Misses++
		return 0, false
	}
	e := c.arena.At(idx)
	if e.Expire() != 0 && e.Expire() <= nowNs {
		c.stats.Misses++
		return 0, false
	}
	c.tlfu.access(idx)
	c.stats.Hits++
	return idx, true
}

// Remove fully detaches key from the wheel, policy, and arena.
func (c *TlfuCore) Remove(key string) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		return 0, false
	}
	c.wheel.deschedule(idx)
	c.tlfu.remove(idx)
	c.arena.Remove(idx)
	return idx, true
}

func (c *TlfuCore) remove(index uint32) {
	c.tlfu.remove(index)
}

// Advance expires every entry whose deadline has passed as of nowNs.
func (c *TlfuCore) Advance(nowNs uint64, sink Sink) {
	before := c.arena.Len()
	c.wheel.advance(nowNs, sink, c)
	c.stats.Expirations += uint64(before - c.arena.Len())
}

// Clear resets the cache to empty.
func (c *TlfuCore) Clear() {
	c.tlfu.clear()
	c.wheel.clear()
	c.arena.Clear()
}

// Len reports the number of resident entries.
func (c *TlfuCore) Len() int { return c.arena.Len() }

// Stats returns a snapshot of this core's counters.
func (c *TlfuCore) Stats() Stats { return c.stats }

// ClockProCore is the engine façade over the CLOCK-Pro policy.
type ClockProCore struct {
	arena *Arena
	hash  HashFunc
	wheel *timerWheel
	clock *clockPro

	stats Stats
}

// NewClockProCore builds a CLOCK-Pro engine instance for cfg.Size resident
// (cold+hot) entries.
func NewClockProCore(cfg Config, nowNs uint64) *ClockProCore {
	a := NewArena(cfg.Size * 2)
	return &ClockProCore{
		arena: a,
		hash:  cfg.hashFunc(),
		wheel: newTimerWheel(a, nowNs),
		clock: newClockPro(a, cfg.Size),
	}
}

// ClockSetResult mirrors SetResult but additionally carries CLOCK-Pro's
// test-page signals, which TinyLFU/LRU never produce.
type ClockSetResult struct {
	Index         uint32
	TestEvicted   bool
	TestEvictedIdx uint32
	Removed       bool
	RemovedIdx    uint32
	RemovedKey    string
}

// Set inserts or refreshes key with the given TTL, running CLOCK-Pro's
// hand-driven admission.
func (c *ClockProCore) Set(key string, ttlNs uint64) ClockSetResult {
	if isReservedKey(key) {
		panicInvariant("cachecore: %q is a reserved key", key)
	}
	e := c.arena.GetOrCreate(key)
	e.SetExpire(expireAt(ttlNs, c.wheel.nanos))
	c.wheel.schedule(e.index)

	testEvicted, testEvictedOK, removed, removedOK := c.clock.set(e.index)
	result := ClockSetResult{Index: e.index}
	if testEvictedOK {
		result.TestEvicted = true
		result.TestEvictedIdx = testEvicted
	}
	if removedOK {
		c.stats.Evictions++
		result.Removed = true
		result.RemovedIdx = removed
		result.RemovedKey = c.arena.At(removed).Key()
		c.wheel.deschedule(removed)
		c.arena.Remove(removed)
	}
	return result
}

// Access reports whether key is resident, not expired, and not a TEST page.
func (c *ClockProCore) Access(key string, nowNs uint64) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		c.stats.Misses++
		return 0, false
	}
	e := c.arena.At(idx)
	if e.Expire() != 0 && e.Expire() <= nowNs {
		c.stats.Misses++
		return 0, false
	}
	if !c.clock.access(idx) {
		c.stats.Misses++
		return 0, false
	}
	c.stats.Hits++
	return idx, true
}

// Remove fully detaches key from the wheel, policy, and arena.
func (c *ClockProCore) Remove(key string) (index uint32, ok bool) {
	idx, found := c.arena.Get(key)
	if !found {
		return 0, false
	}
	c.wheel.deschedule(idx)
	c.clock.remove(idx)
	c.arena.Remove(idx)
	return idx, true
}

func (c *ClockProCore) remove(index uint32) {
	c.clock.remove(index)
}

// Advance expires every entry whose deadline has passed as of nowNs.
func (c *ClockProCore) Advance(nowNs uint64, sink Sink) {
	before := c.arena.Len()
	c.wheel.advance(nowNs, sink, c)
	c.stats.Expirations += uint64(before - c.arena.Len())
}

// Clear resets the cache to empty.
func (c *ClockProCore) Clear() {
	c.clock.clear()
	c.wheel.clear()
	c.arena.Clear()
}

// Len reports the number of resident (cold+hot) entries; TEST pages carry
// no value and are not counted.
func (c *ClockProCore) Len() int { return c.clock.len() }

// Stats returns a snapshot of this core's counters.
func (c *ClockProCore) Stats() Stats { return c.stats }

// expireAt converts a relative TTL into an absolute deadline; 0 means
// never.
func expireAt(ttlNs uint64, nowNs uint64) uint64 {
	if ttlNs == 0 {
		return 0
	}
	return nowNs + ttlNs
}

// isReservedKey reports whether key falls in a namespace the public API
// must refuse (Link root sentinels).
func isReservedKey(key string) bool {
	return len(key) > len(rootKeyPrefix) && key[:len(rootKeyPrefix)] == rootKeyPrefix
}
