package search

import (
	"sort"

	"github.com/theirongolddev/aislog/internal/model"
)

// SortNewestFirst orders messages by parsed timestamp descending. When either
// side's timestamp fails to parse, the comparison falls back to a lexical
// compare of the raw strings so ordering stays total.
func SortNewestFirst(msgs []model.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		ti, erri := msgs[i].Time()
		tj, errj := msgs[j].Time()
		if erri != nil || errj != nil {
			return msgs[i].Timestamp > msgs[j].Timestamp
		}
		return ti.After(tj)
	})
}

// Combine concatenates per-provider result sets, applies filters, sorts
// newest-first, and truncates once at the end. Filters must have been
// validated before any provider scan ran.
func Combine(resultSets [][]model.Message, filters *Filters, limit int) []model.Message {
	var all []model.Message
	for _, set := range resultSets {
		all = append(all, set...)
	}
	if filters != nil {
		all = filters.Apply(all)
	}
	SortNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
