package stats

import (
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// cellKey addresses one activity heatmap cell. Day follows time.Weekday
// numbering (Sunday = 0).
type cellKey struct {
	Hour uint8
	Day  uint8
}

type toolCounter struct {
	Count   uint32
	Success uint32
}

type dayBucket struct {
	Tokens   uint64
	Input    uint64
	Output   uint64
	Messages uint32
}

type cellBucket struct {
	Count  uint32
	Tokens uint64
}

type modelBucket struct {
	Messages uint32
	Tokens   model.TokenDistribution
}

// Accumulator folds messages into the per-session statistics that project
// and global summaries later reduce. One accumulator covers one session
// file; Merge combines accumulators without re-scanning.
type Accumulator struct {
	Messages uint64
	Tokens   model.TokenDistribution

	tools  map[string]*toolCounter
	daily  map[string]*dayBucket
	cells  map[cellKey]*cellBucket
	models map[string]*modelBucket

	times     []time.Time
	firstAt   time.Time
	lastAt    time.Time
	FirstAt   string
	LastAt    string
	durations uint32 // populated on merged accumulators only

	pendingTools map[string]string // tool_use id -> tool name
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		tools:        make(map[string]*toolCounter),
		daily:        make(map[string]*dayBucket),
		cells:        make(map[cellKey]*cellBucket),
		models:       make(map[string]*modelBucket),
		pendingTools: make(map[string]string),
	}
}

// Accumulate folds a message list into a fresh accumulator under the given
// policy.
func Accumulate(messages []model.Message, policy Policy) *Accumulator {
	acc := NewAccumulator()
	for i := range messages {
		acc.Add(&messages[i], policy)
	}
	return acc
}

// Add folds one message in, if the policy includes it.
func (a *Accumulator) Add(msg *model.Message, policy Policy) {
	hasUsage := msg.Usage.HasTokenFields()
	if !ShouldInclude(msg.Type, msg.IsSidechain, hasUsage, policy) {
		return
	}

	a.Messages++
	a.Tokens.AddUsage(msg.Usage)
	a.addTools(msg)

	if t, err := msg.Time(); err == nil {
		a.addTime(t.UTC(), msg)
	}

	if msg.Model != "" {
		mb := a.models[msg.Model]
		if mb == nil {
			mb = &modelBucket{}
			a.models[msg.Model] = mb
		}
		mb.Messages++
		mb.Tokens.AddUsage(msg.Usage)
	}
}

// addTools counts tool invocations. An invocation is successful unless its
// result block is explicitly flagged as an error.
func (a *Accumulator) addTools(msg *model.Message) {
	if msg.Content == nil || !msg.Content.IsBlocks() {
		return
	}
	for _, b := range msg.Content.Blocks {
		switch b.Type {
		case model.BlockToolUse:
			name := b.Name
			if name == "" {
				name = "unknown"
			}
			tc := a.tools[name]
			if tc == nil {
				tc = &toolCounter{}
				a.tools[name] = tc
			}
			tc.Count++
			tc.Success++
			if b.ID != "" {
				a.pendingTools[b.ID] = name
			}
		case model.BlockToolResult:
			if !b.IsError {
				continue
			}
			if name, ok := a.pendingTools[b.ToolUseID]; ok {
				if tc := a.tools[name]; tc != nil && tc.Success > 0 {
					tc.Success--
				}
			}
		}
	}
}

func (a *Accumulator) addTime(t time.Time, msg *model.Message) {
	msgTokens := msg.Usage.Total()

	date := t.Format("2006-01-02")
	day := a.daily[date]
	if day == nil {
		day = &dayBucket{}
		a.daily[date] = day
	}
	day.Messages++
	day.Tokens += msgTokens
	if msg.Usage != nil {
		if msg.Usage.InputTokens != nil {
			day.Input += *msg.Usage.InputTokens
		}
		if msg.Usage.OutputTokens != nil {
			day.Output += *msg.Usage.OutputTokens
		}
	}

	key := cellKey{Hour: uint8(t.Hour()), Day: uint8(t.Weekday())}
	cell := a.cells[key]
	if cell == nil {
		cell = &cellBucket{}
		a.cells[key] = cell
	}
	cell.Count++
	cell.Tokens += msgTokens

	a.times = append(a.times, t)
	if a.firstAt.IsZero() || t.Before(a.firstAt) {
		a.firstAt = t
		a.FirstAt = msg.Timestamp
	}
	if t.After(a.lastAt) {
		a.lastAt = t
		a.LastAt = msg.Timestamp
	}
}

// Duration returns this accumulator's active minutes. For a merged
// accumulator this is the sum of the merged sessions' durations.
func (a *Accumulator) Duration(breakThreshold time.Duration) uint32 {
	if a.durations > 0 {
		return a.durations
	}
	return ActiveDuration(a.times, breakThreshold)
}

// Merge folds another session's accumulator into a. Durations sum per
// session rather than re-segmenting the combined timestamp list, so a
// project total equals the sum of its sessions' totals.
func (a *Accumulator) Merge(o *Accumulator, breakThreshold time.Duration) {
	a.Messages += o.Messages
	a.Tokens.Add(o.Tokens)
	a.durations += o.Duration(breakThreshold)

	for name, tc := range o.tools {
		dst := a.tools[name]
		if dst == nil {
			dst = &toolCounter{}
			a.tools[name] = dst
		}
		dst.Count += tc.Count
		dst.Success += tc.Success
	}
	for date, day := range o.daily {
		dst := a.daily[date]
		if dst == nil {
			dst = &dayBucket{}
			a.daily[date] = dst
		}
		dst.Tokens += day.Tokens
		dst.Input += day.Input
		dst.Output += day.Output
		dst.Messages += day.Messages
	}
	for key, cell := range o.cells {
		dst := a.cells[key]
		if dst == nil {
			dst = &cellBucket{}
			a.cells[key] = dst
		}
		dst.Count += cell.Count
		dst.Tokens += cell.Tokens
	}
	for name, mb := range o.models {
		dst := a.models[name]
		if dst == nil {
			dst = &modelBucket{}
			a.models[name] = dst
		}
		dst.Messages += mb.Messages
		dst.Tokens.Add(mb.Tokens)
	}

	if o.FirstAt != "" && (a.firstAt.IsZero() || o.firstAt.Before(a.firstAt)) {
		a.firstAt = o.firstAt
		a.FirstAt = o.FirstAt
	}
	if o.LastAt != "" && o.lastAt.After(a.lastAt) {
		a.lastAt = o.lastAt
		a.LastAt = o.LastAt
	}
}

// ActiveDates lists the calendar days this accumulator saw activity on.
func (a *Accumulator) ActiveDates() []string {
	dates := make([]string, 0, len(a.daily))
	for date := range a.daily {
		dates = append(dates, date)
	}
	return dates
}
