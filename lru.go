package cachecore

// lru wraps a single bounded Link as a plain least-recently-used list over
// arena indices.
type lru struct {
	list *Link
}

func newLRU(a *Arena, capacity int) *lru {
	return &lru{list: NewLink(a, capacity)}
}

// insert admits index to the front of the list, evicting the current tail
// first if the list is already at capacity.
func (l *lru) insert(a *Arena, index uint32) (evicted uint32, evictedOK bool) {
	return l.list.InsertFront(a, index)
}

// access touches index to the front of the list.
func (l *lru) access(a *Arena, index uint32) {
	l.list.Touch(a, index)
}

// remove unlinks index from the list.
func (l *lru) remove(a *Arena, index uint32) bool {
	return l.list.Remove(a, index)
}

func (l *lru) len() int { return l.list.Len() }

func (l *lru) clear(a *Arena) { l.list.Clear(a) }

// slru is a segmented LRU with a probation and a protected generation.
// Admission always lands in probation; access promotes an entry into
// protected, demoting protected's own tail back to probation if protected
// is already full. The combined length never exceeds maxsize.
type slru struct {
	probation *Link
	protected *Link
	maxsize   int
}

func newSLRU(a *Arena, maxsize int) *slru {
	return &slru{
		probation: NewLink(a, maxsize),
		protected: NewLink(a, int(float64(maxsize)*0.8)),
		maxsize:   maxsize,
	}
}

func (s *slru) length() int { return s.probation.Len() + s.protected.Len() }

// insert admits index to the front of probation. If the combined length is
// already at maxsize, the probation tail is popped first to make room.
func (s *slru) insert(a *Arena, index uint32) (evicted uint32, evictedOK bool) {
	if s.length() == s.maxsize {
		if tail, ok := s.probation.PopTail(a); ok {
			evicted, evictedOK = tail, true
		}
	}
	s.probation.InsertFront(a, index)
	return evicted, evictedOK
}

// victim returns the probation tail, but only once the combined length has
// reached maxsize — before that there is no pressure to evict.
func (s *slru) victim(a *Arena) (uint32, bool) {
	if s.length() < s.maxsize {
		return 0, false
	}
	return s.probation.Tail(a)
}

// access promotes index from probation to protected. If protected is full,
// its own tail is demoted back to the front of probation first.
func (s *slru) access(a *Arena, index uint32) {
	e := a.At(index)
	if e.linkID == uint8(s.protected.ID()) {
		s.protected.Touch(a, index)
		return
	}
	s.probation.Remove(a, index)
	if s.protected.Len() == s.protected.Cap() {
		if tail, ok := s.protected.PopTail(a); ok {
			s.probation.InsertFront(a, tail)
		}
	}
	s.protected.InsertFront(a, index)
}

// remove dispatches on the entry's current link_id.
func (s *slru) remove(a *Arena, index uint32) bool {
	if s.probation.Remove(a, index) {
		return true
	}
	return s.protected.Remove(a, index)
}
