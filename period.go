package tradepnl

import (
	"hash/fnv"
	"slices"
)

// DefaultSummerDatasets is the ceiling on distinct daily arrays a Summer
// keeps sums for before evicting the oldest.
const DefaultSummerDatasets = 8

type sumKey struct {
	fp       uint64
	from, to Date
}

// Summer computes period sums over a daily ledger with a content-addressed
// cache: the key is a fingerprint of the array's contents, never its
// identity, so mutating the array in place simply misses and recomputes.
// It is not safe for concurrent mutating use; give each dataset or goroutine
// its own instance.
type Summer struct {
	max      int
	datasets []uint64 // fingerprints in arrival order, oldest first
	cache    map[sumKey]Money
}

// NewSummer returns a Summer retaining sums for at most maxDatasets distinct
// daily arrays.
func NewSummer(maxDatasets int) *Summer {
	if maxDatasets < 1 {
		maxDatasets = 1
	}
	return &Summer{max: maxDatasets, cache: make(map[sumKey]Money)}
}

// Sum returns the total P&L flow over the range: for every day within it,
// realized plus the unrealized delta (stored, or derived from the previous
// day's unrealized level). A repeated query over unchanged contents is O(1).
func (s *Summer) Sum(daily []DailyResult, r Range) Money {
	key := sumKey{fp: fingerprint(daily), from: r.From, to: r.To}
	if total, ok := s.cache[key]; ok {
		return total
	}

	var total, prevUnrealized Money
	for _, d := range daily {
		flow := d.Realized.Add(d.DeltaOr(prevUnrealized))
		prevUnrealized = d.Unrealized
		if r.Contains(d.Date) {
			total = total.Add(flow)
		}
	}
	total = total.RoundCents()

	s.store(key, total)
	return total
}

func (s *Summer) store(key sumKey, total Money) {
	if !slices.Contains(s.datasets, key.fp) {
		s.datasets = append(s.datasets, key.fp)
		for len(s.datasets) > s.max {
			oldest := s.datasets[0]
			s.datasets = s.datasets[1:]
			for k := range s.cache {
				if k.fp == oldest {
					delete(s.cache, k)
				}
			}
		}
	}
	s.cache[key] = total
}

// Len returns the number of cached sums, mostly for tests.
func (s *Summer) Len() int { return len(s.cache) }

// fingerprint hashes the content of the daily array: date, realized and
// unrealized of every row. Two arrays with equal contents share a
// fingerprint regardless of where they live.
func fingerprint(daily []DailyResult) uint64 {
	h := fnv.New64a()
	for _, d := range daily {
		h.Write([]byte(d.Date.String()))
		h.Write([]byte{'|'})
		h.Write([]byte(d.Realized.value.String()))
		h.Write([]byte{'|'})
		h.Write([]byte(d.Unrealized.value.String()))
		h.Write([]byte{';'})
	}
	return h.Sum64()
}
