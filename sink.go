package cachecore

import (
	"strconv"
	"strings"
)

// autoKeyPrefix names the reserved key space a host uses for its own
// auxiliary bidirectional maps (hash ↔ generated id). This package never
// creates these keys itself; it only recognizes them so a host binding has
// one tested place to parse them instead of inlining the parse at its sink.
const autoKeyPrefix = "_auto:"

// ParseAutoKey extracts the numeric id from a reserved "_auto:<digits>" key.
// It reports ok=false for any key outside that namespace or with a
// malformed suffix, so callers can use it as a cheap namespace test.
func ParseAutoKey(key string) (id uint64, ok bool) {
	rest, found := strings.CutPrefix(key, autoKeyPrefix)
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
