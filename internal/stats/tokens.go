package stats

import (
	"sort"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// TokenRanking builds the per-session token view: one row per session,
// sorted by total tokens descending, optionally filtered by an inclusive
// date range applied to each session's last message time.
func TokenRanking(sessions []SessionData, policy Policy, breakThreshold time.Duration, dateStart, dateEnd *time.Time, offset, limit int) *model.PaginatedTokenStats {
	var items []model.SessionTokenStats
	for _, sd := range sessions {
		acc := Accumulate(sd.Messages, policy)

		if dateStart != nil || dateEnd != nil {
			if acc.lastAt.IsZero() {
				continue
			}
			if dateStart != nil && acc.lastAt.Before(*dateStart) {
				continue
			}
			if dateEnd != nil && acc.lastAt.After(*dateEnd) {
				continue
			}
		}

		items = append(items, model.SessionTokenStats{
			SessionID:       sd.Session.SessionID,
			FilePath:        sd.Session.FilePath,
			TotalTokens:     acc.Tokens.Total(),
			Distribution:    acc.Tokens,
			MessageCount:    int(acc.Messages),
			FirstMessageAt:  acc.FirstAt,
			LastMessageAt:   acc.LastAt,
			DurationMinutes: acc.Duration(breakThreshold),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalTokens != items[j].TotalTokens {
			return items[i].TotalTokens > items[j].TotalTokens
		}
		return items[i].SessionID < items[j].SessionID
	})

	total := len(items)
	page := &model.PaginatedTokenStats{
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}

	start := offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if limit > 0 && start+limit < total {
		end = start + limit
	}
	page.Items = items[start:end]
	page.HasMore = end < total
	return page
}
