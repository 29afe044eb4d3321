package cachecore

import "fmt"

// Page classes used by the CLOCK-Pro policy. Zero means "not a CLOCK-Pro
// page" (e.g. entries managed by TinyLFU or plain LRU never set this).
const (
	PageNone uint8 = 0
	PageCold uint8 = 1
	PageHot  uint8 = 2
	PageTest uint8 = 3
)

// rootKeyPrefix names the reserved key space for Link sentinels. Keys in
// this space are never reachable through the public Set/Access/Remove API;
// the engine façades' Set refuses them (see isReservedKey), while the Arena
// itself does not check.
const rootKeyPrefix = "__root:"

// RootKey returns the reserved sentinel key for the Link with the given id.
// It is exported so a host binding can recognize and reject these keys at
// its own boundary, matching spec.md's reserved-key contract.
func RootKey(linkID uint32) string {
	return fmt.Sprintf("%s%d__", rootKeyPrefix, linkID)
}

// Entry is one arena slot: either a resident key/value's metadata, or a
// Link's root sentinel. A non-root Entry may sit in at most one policy list
// (window/LRU, probation, protected, or a CLOCK-Pro ring) and, independently,
// at most one timer-wheel bucket list at the same time.
type Entry struct {
	key   string
	index uint32

	// Policy-list intrusive coordinates. linkID == 0 means unlinked.
	prev, next uint32
	linkID     uint8

	// Timer-wheel intrusive coordinates. wheelLinkID == 0 means unscheduled.
	wheelPrev, wheelNext uint32
	wheelLinkID          uint32
	tier, slot           uint8

	// expire is a nanosecond deadline; 0 means the entry never expires.
	expire uint64

	// CLOCK-Pro page state. Unused (pageClass == PageNone) by other policies.
	refBit    bool
	pageClass uint8
}

// Key returns the entry's key.
func (e *Entry) Key() string { return e.key }

// Index returns the entry's stable arena index.
func (e *Entry) Index() uint32 { return e.index }

// Expire returns the entry's nanosecond deadline (0 = never).
func (e *Entry) Expire() uint64 { return e.expire }

// SetExpire updates the entry's nanosecond deadline. Callers must reschedule
// the entry in the TimerWheel after changing this.
func (e *Entry) SetExpire(ns uint64) { e.expire = ns }

// Arena is a growable, index-addressed pool of Entry records with a
// free-index stack for reuse and a key→index map for lookup. Index 0 is
// never handed out; it is the universal "unlinked" sentinel value used by
// link_id/wheel_link_id/prev/next fields before any Link claims index 0 for
// its own purposes (Link ids start at 1).
type Arena struct {
	entries []Entry
	free    []uint32
	keyMap  map[string]uint32
	nextID  uint32 // next Link id to hand out via NewRoot
}

// NewArena preallocates an arena sized for roughly `capacity` resident
// entries plus whatever Link roots are registered via NewRoot.
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		panicInvariant("cachecore: arena capacity must be positive, got %d", capacity)
	}
	a := &Arena{
		entries: make([]Entry, 1, capacity+1),
		keyMap:  make(map[string]uint32, capacity),
		nextID:  1,
	}
	a.entries[0] = Entry{index: 0, key: ""}
	return a
}

// NewRoot allocates the next Link id and its root sentinel Entry, returning
// the id (which doubles as the root's arena index). Root entries carry a
// reserved key and are excluded from the key map.
func (a *Arena) NewRoot() uint32 {
	id := a.nextID
	a.nextID++
	idx := a.append(Entry{key: RootKey(id)})
	if idx != id {
		panicInvariant("cachecore: root id/index mismatch: id=%d index=%d", id, idx)
	}
	e := &a.entries[idx]
	e.prev, e.next = idx, idx
	e.wheelPrev, e.wheelNext = idx, idx
	return idx
}

func (a *Arena) append(e Entry) uint32 {
	idx := uint32(len(a.entries))
	e.index = idx
	a.entries = append(a.entries, e)
	return idx
}

// At returns a mutable pointer to the entry at index. Panics (invariant
// violation) on an out-of-range index, which can only happen from a caller
// bug since every index in circulation was handed out by this arena.
func (a *Arena) At(index uint32) *Entry {
	if index == 0 || int(index) >= len(a.entries) {
		panicInvariant("cachecore: arena index %d out of range", index)
	}
	return &a.entries[index]
}

// Get looks up key and returns its index, if resident.
func (a *Arena) Get(key string) (uint32, bool) {
	idx, ok := a.keyMap[key]
	return idx, ok
}

// GetOrCreate returns the existing entry for key, or allocates a fresh one
// (reusing a freed index when available) and inserts it into the key map.
func (a *Arena) GetOrCreate(key string) *Entry {
	if idx, ok := a.keyMap[key]; ok {
		return &a.entries[idx]
	}
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
		a.entries[idx] = Entry{index: idx, key: key, prev: idx, next: idx, wheelPrev: idx, wheelNext: idx}
	} else {
		idx = a.append(Entry{key: key, prev: 0, next: 0, wheelPrev: 0, wheelNext: 0})
	}
	a.keyMap[key] = idx
	return &a.entries[idx]
}

// Remove erases index from the key map and returns it to the free stack.
// The caller must already have unlinked it from every policy/wheel list it
// belonged to; Remove does not touch prev/next/linkID itself.
func (a *Arena) Remove(index uint32) {
	e := &a.entries[index]
	delete(a.keyMap, e.key)
	e.key = ""
	a.free = append(a.free, index)
}

// Clear frees every non-root entry and empties the key map. Link roots
// (and their self-circular prev/next) are left untouched by design: the
// caller is expected to re-clear each Link's length separately.
func (a *Arena) Clear() {
	for key, idx := range a.keyMap {
		delete(a.keyMap, key)
		a.free = append(a.free, idx)
	}
}

// Len returns the number of resident (non-root) entries.
func (a *Arena) Len() int { return len(a.keyMap) }
