package stats

import (
	"fmt"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// FileStats is the serializable form of one session file's accumulator. The
// stats cache persists this shape; restoring it yields an accumulator that
// merges and reduces identically to one built from the messages.
type FileStats struct {
	Messages uint64                  `json:"messages"`
	Tokens   model.TokenDistribution `json:"tokens"`
	Tools    map[string]ToolCounts   `json:"tools,omitempty"`
	Daily    map[string]DayTotals    `json:"daily,omitempty"`
	Cells    map[string]CellTotals   `json:"cells,omitempty"`
	Models   map[string]ModelTotals  `json:"models,omitempty"`
	FirstAt  string                  `json:"first_at,omitempty"`
	LastAt   string                  `json:"last_at,omitempty"`
	Duration uint32                  `json:"duration_minutes"`
}

// ToolCounts mirrors one tool's invocation counters.
type ToolCounts struct {
	Count   uint32 `json:"count"`
	Success uint32 `json:"success"`
}

// DayTotals mirrors one calendar day's bucket.
type DayTotals struct {
	Tokens   uint64 `json:"tokens"`
	Input    uint64 `json:"input"`
	Output   uint64 `json:"output"`
	Messages uint32 `json:"messages"`
}

// CellTotals mirrors one heatmap cell; the map key is "hour-day".
type CellTotals struct {
	Count  uint32 `json:"count"`
	Tokens uint64 `json:"tokens"`
}

// ModelTotals mirrors one model's bucket.
type ModelTotals struct {
	Messages uint32                  `json:"messages"`
	Tokens   model.TokenDistribution `json:"tokens"`
}

// Snapshot freezes the accumulator, resolving the active duration so the
// restored form does not need the raw timestamp list.
func (a *Accumulator) Snapshot(breakThreshold time.Duration) FileStats {
	fs := FileStats{
		Messages: a.Messages,
		Tokens:   a.Tokens,
		FirstAt:  a.FirstAt,
		LastAt:   a.LastAt,
		Duration: a.Duration(breakThreshold),
	}
	if len(a.tools) > 0 {
		fs.Tools = make(map[string]ToolCounts, len(a.tools))
		for name, tc := range a.tools {
			fs.Tools[name] = ToolCounts{Count: tc.Count, Success: tc.Success}
		}
	}
	if len(a.daily) > 0 {
		fs.Daily = make(map[string]DayTotals, len(a.daily))
		for date, day := range a.daily {
			fs.Daily[date] = DayTotals{Tokens: day.Tokens, Input: day.Input, Output: day.Output, Messages: day.Messages}
		}
	}
	if len(a.cells) > 0 {
		fs.Cells = make(map[string]CellTotals, len(a.cells))
		for key, cell := range a.cells {
			fs.Cells[fmt.Sprintf("%d-%d", key.Hour, key.Day)] = CellTotals{Count: cell.Count, Tokens: cell.Tokens}
		}
	}
	if len(a.models) > 0 {
		fs.Models = make(map[string]ModelTotals, len(a.models))
		for name, mb := range a.models {
			fs.Models[name] = ModelTotals{Messages: mb.Messages, Tokens: mb.Tokens}
		}
	}
	return fs
}

// FromSnapshot rebuilds an accumulator from its frozen form.
func FromSnapshot(fs FileStats) *Accumulator {
	a := NewAccumulator()
	a.Messages = fs.Messages
	a.Tokens = fs.Tokens
	a.FirstAt = fs.FirstAt
	a.LastAt = fs.LastAt
	a.durations = fs.Duration
	if t, err := time.Parse(time.RFC3339Nano, fs.FirstAt); err == nil {
		a.firstAt = t.UTC()
	}
	if t, err := time.Parse(time.RFC3339Nano, fs.LastAt); err == nil {
		a.lastAt = t.UTC()
	}

	for name, tc := range fs.Tools {
		a.tools[name] = &toolCounter{Count: tc.Count, Success: tc.Success}
	}
	for date, day := range fs.Daily {
		a.daily[date] = &dayBucket{Tokens: day.Tokens, Input: day.Input, Output: day.Output, Messages: day.Messages}
	}
	for key, cell := range fs.Cells {
		var hour, day uint8
		if _, err := fmt.Sscanf(key, "%d-%d", &hour, &day); err != nil {
			continue
		}
		a.cells[cellKey{Hour: hour, Day: day}] = &cellBucket{Count: cell.Count, Tokens: cell.Tokens}
	}
	for name, mb := range fs.Models {
		a.models[name] = &modelBucket{Messages: mb.Messages, Tokens: mb.Tokens}
	}
	return a
}
