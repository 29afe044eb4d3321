// Package cachecore implements the eviction engine of an in-process cache:
// an adaptive W-TinyLFU admission policy backed by a Segmented-LRU main
// region, an alternative CLOCK-Pro policy, and a hierarchical timer wheel
// for TTL expiration, all sharing one index-addressed entry arena.
//
// The engine is single-threaded by contract. No exported type in this
// package takes an internal lock; callers that share a *Core across
// goroutines must serialize access themselves, the same way a caller of a
// non-thread-safe container would.
package cachecore
