// Package aggregate is the aggregation engine: pure functions turning a flat
// list of dated entries into day totals, progress, streaks, rollups,
// adherence bands and the tabular export projection.
//
// Nothing here holds state between calls. Every function can be re-run on a
// newer snapshot at any time.
package aggregate

import (
	"mealtracker/internal/domain"
)

// DayTotals sums the macros of every entry whose Date equals key. Non-finite
// values count as zero.
func DayTotals(entries []domain.Entry, key string) domain.Macros {
	var total domain.Macros
	for _, e := range entries {
		if e.Date == key {
			total = total.Add(e.Totals().Clean())
		}
	}
	return total
}

// Index is a precomputed day → totals map for views that aggregate many days.
type Index struct {
	totals map[string]domain.Macros
	counts map[string]int
}

// BuildIndex groups entries by their stored day key in a single pass.
func BuildIndex(entries []domain.Entry) Index {
	ix := Index{
		totals: make(map[string]domain.Macros),
		counts: make(map[string]int),
	}
	for _, e := range entries {
		ix.totals[e.Date] = ix.totals[e.Date].Add(e.Totals().Clean())
		ix.counts[e.Date]++
	}
	return ix
}

// Totals returns the macro totals for key, all zero when nothing was logged.
func (ix Index) Totals(key string) domain.Macros {
	return ix.totals[key]
}

// Count returns the number of entries logged on key.
func (ix Index) Count(key string) int {
	return ix.counts[key]
}
