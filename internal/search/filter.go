package search

import (
	"fmt"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// fileMutatingTools are the canonical tool names that create or modify files.
// Read-only tools deliberately excluded.
var fileMutatingTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// ValidationError reports an invalid filter shape. It is returned before any
// scanning work begins.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid search filter %s: %s", e.Field, e.Reason)
}

// Filters narrows search results after text matching. The zero value matches
// everything.
type Filters struct {
	MessageType    string   // "" or "any" matches all types
	ProjectNames   []string // membership; empty matches all
	HasToolCalls   *bool
	HasErrors      *bool
	HasFileChanges *bool
	DateStart      string // inclusive, RFC3339 or 2006-01-02
	DateEnd        string // inclusive
}

// Validate rejects malformed filter shapes up front: a non-parseable date
// bound or an inverted range is an error, not silently-empty results.
func (f *Filters) Validate() error {
	start, err := parseDateBound(f.DateStart, false)
	if err != nil {
		return &ValidationError{Field: "date_start", Reason: err.Error()}
	}
	end, err := parseDateBound(f.DateEnd, true)
	if err != nil {
		return &ValidationError{Field: "date_end", Reason: err.Error()}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return &ValidationError{Field: "date_range", Reason: "start date is after end date"}
	}
	return nil
}

// Apply returns the messages passing every filter. Call Validate first;
// Apply assumes the date bounds parse.
func (f *Filters) Apply(msgs []model.Message) []model.Message {
	start, _ := parseDateBound(f.DateStart, false)
	end, _ := parseDateBound(f.DateEnd, true)

	out := msgs[:0:0]
	for _, m := range msgs {
		if !f.matches(&m, start, end) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (f *Filters) matches(m *model.Message, start, end time.Time) bool {
	if f.MessageType != "" && f.MessageType != "any" && m.Type != f.MessageType {
		return false
	}
	if len(f.ProjectNames) > 0 && !contains(f.ProjectNames, m.ProjectName) {
		return false
	}
	if f.HasToolCalls != nil && *f.HasToolCalls != m.HasToolUse() {
		return false
	}
	if f.HasErrors != nil && *f.HasErrors != hasErrorResult(m) {
		return false
	}
	if f.HasFileChanges != nil && *f.HasFileChanges != hasFileChange(m) {
		return false
	}
	if !start.IsZero() || !end.IsZero() {
		ts, err := m.Time()
		if err != nil {
			return false
		}
		if !start.IsZero() && ts.Before(start) {
			return false
		}
		if !end.IsZero() && ts.After(end) {
			return false
		}
	}
	return true
}

func hasErrorResult(m *model.Message) bool {
	if !m.Content.IsBlocks() {
		return false
	}
	for _, b := range m.Content.Blocks {
		if b.Type == model.BlockToolResult && b.IsError {
			return true
		}
	}
	return false
}

func hasFileChange(m *model.Message) bool {
	if !m.Content.IsBlocks() {
		return false
	}
	for _, b := range m.Content.Blocks {
		if b.Type == model.BlockToolUse && fileMutatingTools[b.Name] {
			return true
		}
	}
	return false
}

// parseDateBound accepts RFC3339 timestamps or bare dates. A bare date used
// as the end bound covers the whole day.
func parseDateBound(s string, isEnd bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse date %q", s)
	}
	if isEnd {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
