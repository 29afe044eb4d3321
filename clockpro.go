package cachecore

// clockPro implements the CLOCK-Pro replacement policy: one circular ring of
// resident and "test" (ghost) entries, swept by three independent hands.
// COLD pages are candidates for eviction, HOT pages are the protected set,
// and TEST pages are metadata-only ghosts kept around just long enough to
// remember that a key was recently evicted.
//
// mem_cold adapts within [mem_max/4, 3*mem_max/4]: every TEST page that is
// set again (a key re-referenced after its value left the cold set) grows
// mem_cold by one (favoring more cold space, since whatever got reused came
// from the cold set), and every test page that ages out without being
// reused shrinks it back down.
type clockPro struct {
	arena *Arena
	ring  *Link

	memMax     int
	memCold    int
	memColdMin int
	memColdMax int

	handHot  uint32
	handCold uint32
	handTest uint32

	countHot  int
	countCold int
	countTest int
}

func newClockPro(a *Arena, size int) *clockPro {
	ring := NewUnboundedLink(a)
	root := ring.ID()
	return &clockPro{
		arena:      a,
		ring:       ring,
		memMax:     size,
		memCold:    size / 2,
		memColdMin: size / 4,
		memColdMax: 3 * size / 4,
		handHot:    root,
		handCold:   root,
		handTest:   root,
	}
}

func (c *clockPro) len() int { return c.countCold + c.countHot }

// access sets the reference bit on a resident page. It reports a hit only
// for COLD/HOT pages; a TEST page carries no data, so touching one is
// always a miss as far as the caller's value store is concerned.
func (c *clockPro) access(index uint32) (hit bool) {
	e := c.arena.At(index)
	e.refBit = true
	return e.pageClass != PageTest
}

// set inserts a brand-new key as a COLD page, or promotes an existing TEST
// page to HOT, or simply marks an existing COLD/HOT page referenced. It
// returns (testEvicted, removed): testEvicted is the index that was just
// demoted into the TEST ghost state (the caller should drop its value but
// keep iterating), and removed is an index that aged out of TEST entirely
// (the caller must free its arena slot).
func (c *clockPro) set(index uint32) (testEvicted uint32, testEvictedOK bool, removed uint32, removedOK bool) {
	e := c.arena.At(index)
	if e.linkID == 0 {
		testEvicted, testEvictedOK, removed, removedOK = c.metaAdd(index)
		c.countCold++
		return
	}
	switch e.pageClass {
	case PageTest:
		if c.memCold < c.memColdMax {
			c.memCold++
		}
		e.refBit = false
		c.metaDel(index)
		c.countTest--
		testEvicted, testEvictedOK, removed, removedOK = c.metaAdd(index)
		// metaAdd files every page it links as COLD; a promoted TEST page is HOT.
		e.pageClass = PageHot
		c.countHot++
	case PageCold, PageHot:
		e.refBit = true
	}
	return
}

// remove accounts for and unlinks index, wherever it currently sits on the
// ring. The caller must have already detached index from anything else
// (value store, timer wheel) that referenced it.
func (c *clockPro) remove(index uint32) {
	e := c.arena.At(index)
	switch e.pageClass {
	case PageCold:
		c.countCold--
	case PageHot:
		c.countHot--
	case PageTest:
		c.countTest--
	}
	c.metaDel(index)
}

// clear empties the ring and resets all three hands to the root, along
// with mem_cold back to its initial midpoint.
func (c *clockPro) clear() {
	c.ring.Clear(c.arena)
	c.countCold, c.countHot, c.countTest = 0, 0, 0
	root := c.ring.ID()
	c.handCold, c.handHot, c.handTest = root, root, root
	c.memCold = c.memMax / 2
}

func (c *clockPro) metaAdd(index uint32) (testEvicted uint32, testEvictedOK bool, removed uint32, removedOK bool) {
	testEvicted, testEvictedOK, removed, removedOK = c.evict()
	c.ring.InsertBefore(c.arena, c.handHot, index)
	e := c.arena.At(index)
	e.pageClass = PageCold
	e.refBit = false
	return
}

func (c *clockPro) metaDel(index uint32) {
	if c.handCold == index {
		c.handCold = c.arena.At(c.handCold).next
	}
	if c.handHot == index {
		c.handHot = c.arena.At(c.handHot).next
	}
	if c.handTest == index {
		c.handTest = c.arena.At(c.handTest).next
	}
	c.ring.Remove(c.arena, index)
}

// evict runs hand_cold until the ring is back within mem_max resident
// (cold+hot) pages, returning the most recent test-evicted/removed pair
// reported along the way — at most one of each surfaces per outer set().
func (c *clockPro) evict() (testEvicted uint32, testEvictedOK bool, removed uint32, removedOK bool) {
	for c.memMax <= c.countHot+c.countCold {
		testEvicted, testEvictedOK, removed, removedOK = c.handColdStep()
	}
	return
}

func (c *clockPro) handColdStep() (testEvicted uint32, testEvictedOK bool, removed uint32, removedOK bool) {
	e := c.arena.At(c.handCold)
	next := e.next
	if e.pageClass == PageCold {
		if e.refBit {
			e.refBit = false
			e.pageClass = PageHot
			c.countCold--
			c.countHot++
		} else {
			testEvicted, testEvictedOK = c.handCold, true
			e.refBit = false
			e.pageClass = PageTest
			c.countCold--
			c.countTest++
			for c.memMax < c.countTest {
				removed, removedOK = c.handTestStep()
			}
		}
	}
	for c.memMax-c.memCold < c.countHot {
		c.handHotStep()
	}
	c.handCold = next
	c.reorganizeCold()
	return
}

func (c *clockPro) handHotStep() {
	e := c.arena.At(c.handHot)
	next := e.next
	if e.pageClass == PageHot {
		if e.refBit {
			e.refBit = false
		} else {
			e.pageClass = PageCold
			c.countHot--
			c.countCold++
		}
	}
	c.handHot = next
	c.reorganizeHot()
}

func (c *clockPro) handTestStep() (removed uint32, removedOK bool) {
	e := c.arena.At(c.handTest)
	next := e.next
	if e.pageClass == PageTest {
		removed, removedOK = c.handTest, true
		c.metaDel(c.handTest)
		c.countTest--
		if c.memCold > c.memColdMin {
			c.memCold--
		}
	}
	c.handTest = next
	c.reorganizeTest()
	return
}

// reorganizeCold advances hand_cold past any page that isn't COLD, skipping
// the root, so the hand rests on a COLD page; when no COLD page remains it
// leaves the hand where it is.
func (c *clockPro) reorganizeCold() {
	if c.countCold == 0 {
		return
	}
	for {
		e := c.arena.At(c.handCold)
		if e.pageClass == PageCold {
			return
		}
		next := e.next
		if next == c.ring.ID() {
			next = c.arena.At(next).next
		}
		c.handCold = next
	}
}

func (c *clockPro) reorganizeHot() {
	if c.countHot == 0 {
		return
	}
	for {
		e := c.arena.At(c.handHot)
		if e.pageClass == PageHot {
			return
		}
		next := e.next
		if next == c.ring.ID() {
			next = c.arena.At(next).next
		}
		c.handHot = next
	}
}

func (c *clockPro) reorganizeTest() {
	if c.countTest == 0 {
		return
	}
	for {
		e := c.arena.At(c.handTest)
		if e.pageClass == PageTest {
			return
		}
		next := e.next
		if next == c.ring.ID() {
			next = c.arena.At(next).next
		}
		c.handTest = next
	}
}
