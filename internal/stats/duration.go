package stats

import (
	"sort"
	"time"
)

// DefaultBreakThreshold is the idle gap that splits a session into separate
// active periods.
const DefaultBreakThreshold = 120 * time.Minute

// ActiveDuration computes active minutes from a set of message timestamps
// using gap-based segmentation: a gap larger than breakThreshold closes the
// current period. Each period contributes at least one minute, so a single
// timestamp yields 1 and no timestamps yield 0.
func ActiveDuration(times []time.Time, breakThreshold time.Duration) uint32 {
	if len(times) == 0 {
		return 0
	}
	if breakThreshold <= 0 {
		breakThreshold = DefaultBreakThreshold
	}

	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var total uint32
	periodStart := sorted[0]
	prev := sorted[0]
	for _, t := range sorted[1:] {
		if t.Sub(prev) > breakThreshold {
			total += periodMinutes(periodStart, prev)
			periodStart = t
		}
		prev = t
	}
	return total + periodMinutes(periodStart, prev)
}

func periodMinutes(start, end time.Time) uint32 {
	minutes := uint32(end.Sub(start).Minutes())
	if minutes < 1 {
		return 1
	}
	return minutes
}
