package search

import (
	"errors"
	"testing"

	"github.com/theirongolddev/aislog/internal/model"
)

func textMsg(id, ts, text string) model.Message {
	return model.Message{UUID: id, Timestamp: ts, Type: "user", Content: model.TextContent(text)}
}

func TestMatchesMessageCaseInsensitive(t *testing.T) {
	msg := textMsg("m1", "2024-03-01T10:00:00Z", "HELLO World")
	if !MatchesMessage(&msg, "hello") {
		t.Error("lowercase query should match uppercase text")
	}
	if !MatchesMessage(&msg, "WORLD") {
		t.Error("uppercase query should match")
	}
	if MatchesMessage(&msg, "absent") {
		t.Error("non-substring should not match")
	}
}

func TestMatchesMessageDescendsBlocks(t *testing.T) {
	msg := model.Message{
		Content: model.BlockContent([]model.ContentBlock{
			{Type: model.BlockToolUse, Name: "Bash", Input: map[string]any{
				"command": "grep needle *.go",
				"nested":  map[string]any{"deep": []any{"other", "HAYSTACK"}},
			}},
			{Type: model.BlockThinking, Thinking: "private reasoning"},
		}),
	}

	for _, q := range []string{"needle", "haystack", "bash", "reasoning"} {
		if !MatchesMessage(&msg, q) {
			t.Errorf("query %q should match", q)
		}
	}
	if MatchesMessage(&msg, "missing") {
		t.Error("unrelated query matched")
	}
}

func TestMatchesMessageNilContent(t *testing.T) {
	msg := model.Message{UUID: "m1"}
	if MatchesMessage(&msg, "anything") {
		t.Error("nil content should never match")
	}
}

func TestFiltersValidate(t *testing.T) {
	ok := &Filters{DateStart: "2024-01-01", DateEnd: "2024-06-01T12:00:00Z"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid filters rejected: %v", err)
	}

	bad := &Filters{DateStart: "not-a-date"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unparseable bound")
	}

	inverted := &Filters{DateStart: "2024-06-01", DateEnd: "2024-01-01"}
	err := inverted.Validate()
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "date_range" {
		t.Errorf("error = %v", err)
	}
}

func TestFiltersApplyTypeAndDate(t *testing.T) {
	msgs := []model.Message{
		textMsg("old", "2024-01-01T10:00:00Z", "x"),
		textMsg("in", "2024-03-01T10:00:00Z", "x"),
		{UUID: "asst", Timestamp: "2024-03-02T10:00:00Z", Type: "assistant", Content: model.TextContent("x")},
	}

	f := &Filters{MessageType: "user", DateStart: "2024-02-01", DateEnd: "2024-04-01"}
	out := f.Apply(msgs)
	if len(out) != 1 || out[0].UUID != "in" {
		t.Errorf("filtered = %+v", out)
	}

	any := &Filters{MessageType: "any"}
	if got := any.Apply(msgs); len(got) != 3 {
		t.Errorf("any type kept %d, want 3", len(got))
	}
}

func TestFiltersApplyEndDateCoversWholeDay(t *testing.T) {
	msgs := []model.Message{textMsg("late", "2024-03-01T23:30:00Z", "x")}
	f := &Filters{DateEnd: "2024-03-01"}
	if got := f.Apply(msgs); len(got) != 1 {
		t.Error("bare end date should cover the whole day")
	}
}

func TestFiltersApplyFlags(t *testing.T) {
	yes, no := true, false
	withTool := model.Message{
		UUID: "t", Timestamp: "2024-03-01T10:00:00Z", Type: "assistant",
		Content: model.BlockContent([]model.ContentBlock{
			{Type: model.BlockToolUse, ID: "c1", Name: "Edit"},
		}),
	}
	withError := model.Message{
		UUID: "e", Timestamp: "2024-03-01T10:01:00Z", Type: "user",
		Content: model.BlockContent([]model.ContentBlock{
			{Type: model.BlockToolResult, ToolUseID: "c1", IsError: true},
		}),
	}
	plain := textMsg("p", "2024-03-01T10:02:00Z", "x")
	msgs := []model.Message{withTool, withError, plain}

	if out := (&Filters{HasToolCalls: &yes}).Apply(msgs); len(out) != 1 || out[0].UUID != "t" {
		t.Errorf("HasToolCalls = %+v", out)
	}
	if out := (&Filters{HasErrors: &yes}).Apply(msgs); len(out) != 1 || out[0].UUID != "e" {
		t.Errorf("HasErrors = %+v", out)
	}
	// Edit mutates files; a read-only tool would not.
	if out := (&Filters{HasFileChanges: &yes}).Apply(msgs); len(out) != 1 || out[0].UUID != "t" {
		t.Errorf("HasFileChanges = %+v", out)
	}
	if out := (&Filters{HasToolCalls: &no}).Apply(msgs); len(out) != 2 {
		t.Errorf("negated HasToolCalls kept %d, want 2", len(out))
	}
}

func TestFiltersApplyProjectNames(t *testing.T) {
	a := textMsg("a", "2024-03-01T10:00:00Z", "x")
	a.ProjectName = "webapp"
	b := textMsg("b", "2024-03-01T10:01:00Z", "x")
	b.ProjectName = "cli"

	f := &Filters{ProjectNames: []string{"cli"}}
	out := f.Apply([]model.Message{a, b})
	if len(out) != 1 || out[0].UUID != "b" {
		t.Errorf("filtered = %+v", out)
	}
}

func TestSortNewestFirst(t *testing.T) {
	msgs := []model.Message{
		textMsg("a", "2024-03-01T10:00:00Z", "x"),
		textMsg("c", "2024-03-03T10:00:00Z", "x"),
		textMsg("b", "2024-03-02T10:00:00Z", "x"),
	}
	SortNewestFirst(msgs)
	if msgs[0].UUID != "c" || msgs[2].UUID != "a" {
		t.Errorf("order = %q, %q, %q", msgs[0].UUID, msgs[1].UUID, msgs[2].UUID)
	}
}

func TestSortNewestFirstLexicalFallback(t *testing.T) {
	msgs := []model.Message{
		textMsg("a", "not-a-time-1", "x"),
		textMsg("b", "not-a-time-2", "x"),
	}
	SortNewestFirst(msgs)
	if msgs[0].UUID != "b" {
		t.Errorf("lexical fallback order = %q first", msgs[0].UUID)
	}
}

func TestCombine(t *testing.T) {
	setA := []model.Message{textMsg("a", "2024-03-01T10:00:00Z", "x")}
	setB := []model.Message{
		textMsg("b", "2024-03-03T10:00:00Z", "x"),
		textMsg("c", "2024-03-02T10:00:00Z", "x"),
	}

	out := Combine([][]model.Message{setA, setB}, nil, 2)
	if len(out) != 2 {
		t.Fatalf("got %d, want truncation to 2", len(out))
	}
	if out[0].UUID != "b" || out[1].UUID != "c" {
		t.Errorf("order = %q, %q", out[0].UUID, out[1].UUID)
	}
}
