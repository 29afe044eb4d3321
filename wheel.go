package cachecore

import "math/bits"

// wheelBuckets gives the number of buckets in each of the wheel's 5 tiers.
var wheelBuckets = [5]int{64, 64, 32, 4, 1}

// Sink is the one callback the engine makes outward: it tells the host to
// drop the value stored at index for key, as that entry has just expired.
// A Sink must not reenter the engine.
type Sink interface {
	DelItem(key string, index uint32)
}

// timerWheel is a hierarchical timer wheel over nanosecond deadlines: 5
// tiers whose spans are powers of two roughly spanning {1s, 1m, 1h, 1d, 4d},
// each bucket an unbounded wheel-side Link. An entry's bucket is recomputed
// every time it is (re)scheduled, so cascading a surviving entry into a
// finer tier on advance is just another schedule call.
type timerWheel struct {
	arena   *Arena
	buckets [5]int
	spans   [6]uint64
	shift   [5]uint
	wheel   [5][]*WheelLink
	nanos   uint64
}

func nextPow2u64(x uint64) uint64 { return nextPow2(x) }

func newTimerWheel(a *Arena, nowNs uint64) *timerWheel {
	const second = uint64(1_000_000_000)
	spans := [6]uint64{
		nextPow2u64(1 * second),
		nextPow2u64(60 * second),
		nextPow2u64(60 * 60 * second),
		nextPow2u64(24 * 60 * 60 * second),
		nextPow2u64(24*60*60*second) * 4,
		nextPow2u64(24*60*60*second) * 4,
	}
	w := &timerWheel{
		arena:   a,
		buckets: wheelBuckets,
		spans:   spans,
		nanos:   nowNs,
	}
	for i := 0; i < 5; i++ {
		w.shift[i] = uint(bits.TrailingZeros64(spans[i]))
		w.wheel[i] = make([]*WheelLink, wheelBuckets[i])
		for j := range w.wheel[i] {
			w.wheel[i][j] = NewWheelLink(a)
		}
	}
	return w
}

// findBucket locates the (tier, slot) an expiry belongs in: the first tier
// whose span strictly exceeds the entry's remaining duration, or the final
// tier's lone bucket if the deadline is further out than the wheel reaches.
func (w *timerWheel) findBucket(expire uint64) (tier int, slot uint64) {
	duration := expire - w.nanos
	for i := 0; i < 5; i++ {
		if duration < w.spans[i+1] {
			ticks := expire >> w.shift[i]
			slot = ticks & uint64(w.buckets[i]-1)
			return i, slot
		}
	}
	return 4, 0
}

// schedule places index into the bucket matching its current expiry,
// descheduling it from wherever it previously sat first. An expire of 0
// means "never", and the entry is simply left unscheduled.
func (w *timerWheel) schedule(index uint32) {
	w.deschedule(index)
	e := w.arena.At(index)
	if e.expire == 0 {
		return
	}
	tier, slot := w.findBucket(e.expire)
	e.tier, e.slot = uint8(tier), uint8(slot)
	w.wheel[tier][slot].InsertFront(w.arena, index)
}

// deschedule removes index from its current bucket, if it is scheduled.
func (w *timerWheel) deschedule(index uint32) {
	e := w.arena.At(index)
	if e.wheelLinkID == 0 {
		return
	}
	w.wheel[e.tier][e.slot].Remove(w.arena, index)
}

// remover is the minimal capability the wheel needs from a policy during
// advance: drop a fully-expired entry's bookkeeping.
type remover interface {
	remove(index uint32)
}

// advance walks every tier from the finest upward, sweeping exactly the
// buckets that ticked over between the wheel's last-observed time and now.
// Expired entries are reported to sink and fully freed; survivors are
// rescheduled, which cascades them into whatever tier their remaining
// lifetime now belongs to.
func (w *timerWheel) advance(now uint64, sink Sink, policy remover) {
	previous := w.nanos
	if now < previous {
		panicInvariant("cachecore: timer wheel advanced backward: now=%d < previous=%d", now, previous)
	}
	w.nanos = now

	for i := 0; i < 5; i++ {
		prevTicks := previous >> w.shift[i]
		curTicks := now >> w.shift[i]
		if curTicks <= prevTicks {
			break
		}
		w.expireTier(i, prevTicks, curTicks-prevTicks, sink, policy)
	}
}

func (w *timerWheel) expireTier(tier int, prevTicks, delta uint64, sink Sink, policy remover) {
	mask := uint64(w.buckets[tier] - 1)
	steps := delta
	if steps > uint64(w.buckets[tier]) {
		steps = uint64(w.buckets[tier])
	}
	start := prevTicks & mask
	end := start + steps

	for i := start; i < end; i++ {
		bucket := w.wheel[tier][i&mask]
		members := bucket.Snapshot(w.arena)

		var removed, modified []uint32
		for _, m := range members {
			if m.expire <= w.nanos {
				sink.DelItem(m.key, m.index)
				removed = append(removed, m.index)
			} else {
				modified = append(modified, m.index)
			}
		}

		for _, idx := range removed {
			w.deschedule(idx)
			policy.remove(idx)
			w.arena.Remove(idx)
		}

		// Each modified entry is unlinked from this same bucket by schedule's
		// own deschedule call before it lands in its new tier/slot, so after
		// this loop the bucket holds only entries rescheduled back into it. A
		// blanket Clear here would drop those while leaving their wheel
		// pointers aimed at this bucket.
		for _, idx := range modified {
			w.schedule(idx)
		}
	}
}

// clear empties every bucket in every tier without freeing arena entries;
// callers that want entries freed must do that separately (see Arena.Clear).
func (w *timerWheel) clear() {
	for i := range w.wheel {
		for _, bucket := range w.wheel[i] {
			bucket.Clear(w.arena)
		}
	}
}
