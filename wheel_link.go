package cachecore

// WheelLink is the timer-wheel counterpart to Link: an intrusive circular
// list over an Arena's wheel-side coordinates (Entry.wheelPrev/wheelNext/
// wheelLinkID). Every wheel bucket owns one WheelLink. Unlike Link, these
// lists are always unbounded — InsertFront never evicts.
type WheelLink struct {
	id     uint32
	root   uint32
	length int
}

// NewWheelLink allocates a wheel bucket's root sentinel and returns its
// WheelLink. id doubles as the root entry's arena index, continuing the
// same id space as policy Links; ids follow allocation order, and the
// engine façades build their timer wheel before their policy lists.
func NewWheelLink(a *Arena) *WheelLink {
	id := a.NewRoot()
	return &WheelLink{id: id, root: id}
}

// ID returns the bucket's Link id / root index.
func (w *WheelLink) ID() uint32 { return w.id }

// Len returns the number of entries currently scheduled in this bucket.
func (w *WheelLink) Len() int { return w.length }

func (w *WheelLink) splice(a *Arena, prevIdx, index, nextIdx uint32) {
	e := a.At(index)
	e.wheelPrev, e.wheelNext = prevIdx, nextIdx
	e.wheelLinkID = w.id
	a.At(prevIdx).wheelNext = index
	a.At(nextIdx).wheelPrev = index
	w.length++
}

func (w *WheelLink) unsplice(a *Arena, index uint32) bool {
	e := a.At(index)
	if e.wheelLinkID != w.id {
		return false
	}
	a.At(e.wheelPrev).wheelNext = e.wheelNext
	a.At(e.wheelNext).wheelPrev = e.wheelPrev
	e.wheelPrev, e.wheelNext = index, index
	e.wheelLinkID = 0
	w.length--
	return true
}

// InsertFront pushes index to the front of the bucket's list. Wheel lists
// are unbounded, so this never evicts.
func (w *WheelLink) InsertFront(a *Arena, index uint32) {
	root := a.At(w.root)
	w.splice(a, w.root, index, root.wheelNext)
}

// Remove unlinks index from this bucket. Returns false if index was not a
// member (mismatched wheel_link_id).
func (w *WheelLink) Remove(a *Arena, index uint32) bool {
	return w.unsplice(a, index)
}

// Clear empties the bucket's list without freeing arena entries.
func (w *WheelLink) Clear(a *Arena) {
	root := a.At(w.root)
	root.wheelPrev, root.wheelNext = w.root, w.root
	w.length = 0
}

// wheelEntry is a snapshot of one bucket member, taken up front so the
// wheel's advance logic can mutate the bucket (deschedule/remove) while
// iterating without corrupting the walk.
type wheelEntry struct {
	index  uint32
	key    string
	expire uint64
}

// Snapshot collects every member of the bucket's list as a value slice,
// matching the "collect indices first, mutate after" iteration contract
// spec.md requires of iter_wheel during advance.
func (w *WheelLink) Snapshot(a *Arena) []wheelEntry {
	if w.length == 0 {
		return nil
	}
	out := make([]wheelEntry, 0, w.length)
	root := a.At(w.root)
	for cur := root.wheelNext; cur != w.root; {
		e := a.At(cur)
		out = append(out, wheelEntry{index: cur, key: e.key, expire: e.expire})
		cur = e.wheelNext
	}
	return out
}
