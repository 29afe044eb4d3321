package cachecore

// Link is an intrusive, circular, doubly-linked list view over an Arena's
// policy-side coordinates (Entry.prev/next/linkID). Its root is itself an
// Arena entry; root.next/root.prev are the list's head/tail. A Link with
// capacity 0 and unbounded set true never evicts on insert.
type Link struct {
	id        uint32
	root      uint32
	capacity  int
	length    int
	unbounded bool
}

// NewLink creates a bounded policy Link of the given capacity, rooted at a
// freshly allocated sentinel entry.
func NewLink(a *Arena, capacity int) *Link {
	id := a.NewRoot()
	return &Link{id: id, root: id, capacity: capacity}
}

// NewUnboundedLink creates a policy Link with no capacity ceiling. Only
// CLOCK-Pro's backing ring and similar unbounded rings use this.
func NewUnboundedLink(a *Arena) *Link {
	id := a.NewRoot()
	return &Link{id: id, root: id, unbounded: true}
}

// ID returns the Link's identifier, which doubles as its root entry's index.
func (l *Link) ID() uint32 { return l.id }

// Len returns the number of non-root entries currently in the list.
func (l *Link) Len() int { return l.length }

// Cap returns the list's bound (meaningless, always satisfied, when unbounded).
func (l *Link) Cap() int { return l.capacity }

// SetCap changes the bound without evicting; TinyLFU's hill climbing grows
// and shrinks window/protected capacities in place.
func (l *Link) SetCap(capacity int) { l.capacity = capacity }

// splice wires index in between prevIdx and nextIdx on the policy side.
func (l *Link) splice(a *Arena, prevIdx, index, nextIdx uint32) {
	e := a.At(index)
	e.prev, e.next = prevIdx, nextIdx
	e.linkID = uint8(l.id)
	a.At(prevIdx).next = index
	a.At(nextIdx).prev = index
	l.length++
}

// unsplice removes index from wherever it sits on the policy side. It is
// idempotent: removing an already-unlinked index, or one that belongs to a
// different Link, is a no-op.
func (l *Link) unsplice(a *Arena, index uint32) bool {
	e := a.At(index)
	if e.linkID != uint8(l.id) {
		return false
	}
	a.At(e.prev).next = e.next
	a.At(e.next).prev = e.prev
	e.prev, e.next = index, index
	e.linkID = 0
	l.length--
	return true
}

// InsertFront pushes index to the front of the list. If the list is bounded
// and already at capacity, the current tail is evicted first and its index
// returned.
func (l *Link) InsertFront(a *Arena, index uint32) (evicted uint32, evictedOK bool) {
	if !l.unbounded && l.length == l.capacity {
		if tail, ok := l.PopTail(a); ok {
			evicted, evictedOK = tail, true
		}
	}
	root := a.At(l.root)
	l.splice(a, l.root, index, root.next)
	return evicted, evictedOK
}

// InsertBefore splices index immediately before at, without any capacity
// eviction (used internally by CLOCK-Pro, which manages its own bound).
func (l *Link) InsertBefore(a *Arena, at, index uint32) {
	prevIdx := a.At(at).prev
	l.splice(a, prevIdx, index, at)
}

// pushFront splices index to the front of the list with no capacity check
// or eviction, leaving the list free to sit above its own Cap() until the
// caller polices the overflow itself (TinyLFU's window, whose overflow must
// move into probation rather than be silently evicted here).
func (l *Link) pushFront(a *Arena, index uint32) {
	root := a.At(l.root)
	l.splice(a, l.root, index, root.next)
}

// Remove unlinks index from the list. Returns false if index was not a
// member of this Link (mismatched link_id), per spec.md's no-op contract.
func (l *Link) Remove(a *Arena, index uint32) bool {
	return l.unsplice(a, index)
}

// Tail returns the index at the back of the list (least recently inserted
// side), or (0, false) if empty.
func (l *Link) Tail(a *Arena) (uint32, bool) {
	if l.length == 0 {
		return 0, false
	}
	return a.At(l.root).prev, true
}

// PopTail removes and returns the tail index.
func (l *Link) PopTail(a *Arena) (uint32, bool) {
	tail, ok := l.Tail(a)
	if !ok {
		return 0, false
	}
	l.unsplice(a, tail)
	return tail, true
}

// Touch moves index to the front of the list (remove then insert_front,
// without any capacity eviction since the entry is already a member).
func (l *Link) Touch(a *Arena, index uint32) {
	l.unsplice(a, index)
	root := a.At(l.root)
	l.splice(a, l.root, index, root.next)
}

// Clear resets the list to empty without freeing any arena entries; callers
// that want entries freed must do so themselves (see Arena.Clear/Remove).
func (l *Link) Clear(a *Arena) {
	root := a.At(l.root)
	root.prev, root.next = l.root, l.root
	l.length = 0
}

// ForEach walks the list from front to back, snapshotting each index before
// yielding it so the callback may remove the current entry without
// corrupting the walk (the standard intrusive-list iteration pattern).
func (l *Link) ForEach(a *Arena, fn func(index uint32)) {
	root := a.At(l.root)
	cur := root.next
	for cur != l.root {
		next := a.At(cur).next
		fn(cur)
		cur = next
	}
}
