package stats

import (
	"sort"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// SessionData pairs one session's metadata with its full message list.
type SessionData struct {
	Session  model.Session
	Messages []model.Message
}

// ProjectData groups the sessions of one project for global reduction.
type ProjectData struct {
	Project  model.Project
	Sessions []SessionData
}

func toolStats(a *Accumulator) []model.ToolUsageStat {
	out := make([]model.ToolUsageStat, 0, len(a.tools))
	for name, tc := range a.tools {
		rate := float32(1)
		if tc.Count > 0 {
			rate = float32(tc.Success) / float32(tc.Count)
		}
		out = append(out, model.ToolUsageStat{
			ToolName:    name,
			UsageCount:  tc.Count,
			SuccessRate: rate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UsageCount != out[j].UsageCount {
			return out[i].UsageCount > out[j].UsageCount
		}
		return out[i].ToolName < out[j].ToolName
	})
	return out
}

// dailyStats renders the day buckets in date order. sessionDates counts how
// many sessions were active per day; active hours estimate from message
// volume, clamped to [1, 24].
func dailyStats(a *Accumulator, sessionDates map[string]int) []model.DailyStats {
	out := make([]model.DailyStats, 0, len(a.daily))
	for date, day := range a.daily {
		activeHours := day.Messages / 10
		if activeHours < 1 {
			activeHours = 1
		}
		if activeHours > 24 {
			activeHours = 24
		}
		out = append(out, model.DailyStats{
			Date:         date,
			TotalTokens:  day.Tokens,
			InputTokens:  day.Input,
			OutputTokens: day.Output,
			MessageCount: day.Messages,
			SessionCount: sessionDates[date],
			ActiveHours:  activeHours,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func heatmapCells(a *Accumulator) []model.ActivityHeatmapCell {
	out := make([]model.ActivityHeatmapCell, 0, len(a.cells))
	for key, cell := range a.cells {
		out = append(out, model.ActivityHeatmapCell{
			Hour:          key.Hour,
			Day:           key.Day,
			ActivityCount: cell.Count,
			TokensUsed:    cell.Tokens,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}

// mostActiveHour picks the heatmap cell with the highest activity count.
func mostActiveHour(a *Accumulator) uint8 {
	var best uint8
	var bestCount uint32
	for key, cell := range a.cells {
		if cell.Count > bestCount || (cell.Count == bestCount && key.Hour < best) {
			best = key.Hour
			bestCount = cell.Count
		}
	}
	return best
}

func modelStats(a *Accumulator) []model.ModelStats {
	out := make([]model.ModelStats, 0, len(a.models))
	for name, mb := range a.models {
		out = append(out, model.ModelStats{
			ModelName:           name,
			MessageCount:        mb.Messages,
			TokenCount:          mb.Tokens.Total(),
			InputTokens:         mb.Tokens.Input,
			OutputTokens:        mb.Tokens.Output,
			CacheCreationTokens: mb.Tokens.CacheCreation,
			CacheReadTokens:     mb.Tokens.CacheRead,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenCount != out[j].TokenCount {
			return out[i].TokenCount > out[j].TokenCount
		}
		return out[i].ModelName < out[j].ModelName
	})
	return out
}

func dateRange(a *Accumulator) model.DateRange {
	dr := model.DateRange{
		FirstMessage: a.FirstAt,
		LastMessage:  a.LastAt,
	}
	if !a.firstAt.IsZero() && !a.lastAt.IsZero() {
		first := a.firstAt.Truncate(24 * time.Hour)
		last := a.lastAt.Truncate(24 * time.Hour)
		dr.DaysSpan = uint32(last.Sub(first).Hours()/24) + 1
	}
	return dr
}
