package cachecore

import (
	farm "github.com/dgryski/go-farm"
	"github.com/cespare/xxhash/v2"
)

// HashFunc computes a 64-bit digest of a key. TinyLFU uses it for the
// frequency sketch and the doorkeeper bloom filter; the arena's key lookup
// is a plain Go map and does not use it.
type HashFunc func(string) uint64

// HashKey is the default HashFunc, backed by xxhash. It is fast and has
// good avalanche behavior for short string keys.
func HashKey(key string) uint64 {
	return xxhash.Sum64String(key)
}

// FarmHash is an alternate HashFunc backed by Google's FarmHash (via
// dgryski/go-farm). Configs may set HashFunc to FarmHash to change the hash
// the admission sketch and doorkeeper use.
func FarmHash(key string) uint64 {
	return farm.Hash64([]byte(key))
}
