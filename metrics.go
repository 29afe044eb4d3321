package cachecore

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of what a single Core has observed
// since it was created; a Core's Clear does not reset it. Unlike the teacher's
// Metrics, there is no sharded/atomic bookkeeping here: the engine's
// single-threaded contract means a plain struct is enough, and a snapshot
// is just a copy of it.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Rejections  uint64
	Expirations uint64
}

// Ratio returns Hits over all accesses (Hits+Misses), or 0 if there have
// been none yet.
func (s Stats) Ratio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// String renders a one-line human-readable summary, formatting counts with
// thousands separators the way the teacher's Metrics.String does.
func (s Stats) String() string {
	return fmt.Sprintf(
		"hits: %s misses: %s evictions: %s rejections: %s expirations: %s hit-ratio: %.2f",
		humanize.Comma(int64(s.Hits)),
		humanize.Comma(int64(s.Misses)),
		humanize.Comma(int64(s.Evictions)),
		humanize.Comma(int64(s.Rejections)),
		humanize.Comma(int64(s.Expirations)),
		s.Ratio(),
	)
}
