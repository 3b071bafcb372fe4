package stats

import (
	"testing"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

func TestShouldInclude(t *testing.T) {
	tests := []struct {
		name      string
		msgType   string
		sidechain bool
		hasUsage  bool
		policy    Policy
		want      bool
	}{
		{"summary always excluded", "summary", false, true, BillingTotal, false},
		{"user billing", "user", false, false, BillingTotal, true},
		{"assistant billing", "assistant", false, false, BillingTotal, true},
		{"system billing", "system", false, false, BillingTotal, true},
		{"sidechain user billing", "user", true, false, BillingTotal, true},
		{"progress without usage", "progress", false, false, BillingTotal, false},
		{"progress with usage", "progress", false, true, BillingTotal, true},
		{"snapshot with usage", "file-history-snapshot", false, true, BillingTotal, true},
		{"unknown type with usage", "queue-operation", false, true, BillingTotal, true},
		{"user conversation", "user", false, false, ConversationOnly, true},
		{"sidechain user conversation", "user", true, false, ConversationOnly, false},
		{"system conversation", "system", false, true, ConversationOnly, false},
		{"progress conversation", "progress", false, true, ConversationOnly, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldInclude(tt.msgType, tt.sidechain, tt.hasUsage, tt.policy)
			if got != tt.want {
				t.Errorf("ShouldInclude(%q, %v, %v, %v) = %v, want %v",
					tt.msgType, tt.sidechain, tt.hasUsage, tt.policy, got, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("conversation_only"); err != nil || p != ConversationOnly {
		t.Errorf("ParsePolicy(conversation_only) = %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != BillingTotal {
		t.Errorf("ParsePolicy(empty) = %v, %v", p, err)
	}
	if _, err := ParsePolicy("bogus"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestActiveDurationSinglePeriod(t *testing.T) {
	times := []time.Time{
		mustTime(t, "2024-03-01T10:00:00Z"),
		mustTime(t, "2024-03-01T10:20:00Z"),
	}
	if got := ActiveDuration(times, DefaultBreakThreshold); got != 20 {
		t.Errorf("duration = %d, want 20", got)
	}
}

func TestActiveDurationSplitsOnGap(t *testing.T) {
	times := []time.Time{
		mustTime(t, "2024-03-01T10:00:00Z"),
		mustTime(t, "2024-03-01T10:20:00Z"),
		mustTime(t, "2024-03-01T14:00:00Z"),
		mustTime(t, "2024-03-01T14:30:00Z"),
	}
	// The gap from 10:20 to 14:00 exceeds the threshold, closing the first
	// period at 20 minutes; the second period adds 30.
	if got := ActiveDuration(times, DefaultBreakThreshold); got != 50 {
		t.Errorf("duration = %d, want 50", got)
	}
}

func TestActiveDurationEdges(t *testing.T) {
	if got := ActiveDuration(nil, DefaultBreakThreshold); got != 0 {
		t.Errorf("empty = %d, want 0", got)
	}
	one := []time.Time{mustTime(t, "2024-03-01T10:00:00Z")}
	if got := ActiveDuration(one, DefaultBreakThreshold); got != 1 {
		t.Errorf("single timestamp = %d, want 1", got)
	}
	// Unsorted input is sorted internally.
	times := []time.Time{
		mustTime(t, "2024-03-01T10:20:00Z"),
		mustTime(t, "2024-03-01T10:00:00Z"),
	}
	if got := ActiveDuration(times, DefaultBreakThreshold); got != 20 {
		t.Errorf("unsorted = %d, want 20", got)
	}
}

func usageMsg(msgType, ts string, input, output uint64) model.Message {
	return model.Message{
		UUID:      msgType + "-" + ts,
		SessionID: "s1",
		Timestamp: ts,
		Type:      msgType,
		Usage: &model.TokenUsage{
			InputTokens:  model.Uint64(input),
			OutputTokens: model.Uint64(output),
		},
	}
}

func TestAccumulateTokensAndDaily(t *testing.T) {
	msgs := []model.Message{
		usageMsg("user", "2024-03-01T10:00:00Z", 10, 0),
		usageMsg("assistant", "2024-03-01T10:05:00Z", 100, 50),
		usageMsg("assistant", "2024-03-02T09:00:00Z", 20, 30),
	}

	acc := Accumulate(msgs, BillingTotal)
	if acc.Messages != 3 {
		t.Errorf("Messages = %d, want 3", acc.Messages)
	}
	if acc.Tokens.Input != 130 || acc.Tokens.Output != 80 {
		t.Errorf("tokens = %+v", acc.Tokens)
	}
	if len(acc.daily) != 2 {
		t.Errorf("daily buckets = %d, want 2", len(acc.daily))
	}
	day := acc.daily["2024-03-01"]
	if day == nil || day.Messages != 2 || day.Tokens != 160 {
		t.Errorf("2024-03-01 bucket = %+v", day)
	}
	if acc.FirstAt != "2024-03-01T10:00:00Z" || acc.LastAt != "2024-03-02T09:00:00Z" {
		t.Errorf("range = %q..%q", acc.FirstAt, acc.LastAt)
	}
}

func TestAccumulatePolicyOrdering(t *testing.T) {
	msgs := []model.Message{
		usageMsg("user", "2024-03-01T10:00:00Z", 10, 0),
		usageMsg("assistant", "2024-03-01T10:05:00Z", 100, 50),
		usageMsg("progress", "2024-03-01T10:06:00Z", 5, 5),
		{
			UUID: "side", SessionID: "s1", Timestamp: "2024-03-01T10:07:00Z",
			Type: "assistant", IsSidechain: true,
			Usage: &model.TokenUsage{InputTokens: model.Uint64(7)},
		},
		{UUID: "sum", SessionID: "s1", Type: "summary"},
	}

	billing := Accumulate(msgs, BillingTotal)
	conversation := Accumulate(msgs, ConversationOnly)

	if billing.Tokens.Total() < conversation.Tokens.Total() {
		t.Errorf("billing %d < conversation %d", billing.Tokens.Total(), conversation.Tokens.Total())
	}
	if billing.Messages != 4 {
		t.Errorf("billing messages = %d, want 4", billing.Messages)
	}
	if conversation.Messages != 2 {
		t.Errorf("conversation messages = %d, want 2", conversation.Messages)
	}
}

func TestAccumulateToolSuccess(t *testing.T) {
	msgs := []model.Message{
		{
			UUID: "a1", SessionID: "s1", Timestamp: "2024-03-01T10:00:00Z", Type: "assistant",
			Content: model.BlockContent([]model.ContentBlock{
				{Type: model.BlockToolUse, ID: "c1", Name: "Bash", Input: map[string]any{"command": "ls"}},
				{Type: model.BlockToolUse, ID: "c2", Name: "Bash", Input: map[string]any{"command": "rm x"}},
				{Type: model.BlockToolUse, ID: "c3", Name: "Read"},
			}),
		},
		{
			UUID: "u1", SessionID: "s1", Timestamp: "2024-03-01T10:01:00Z", Type: "user",
			Content: model.BlockContent([]model.ContentBlock{
				{Type: model.BlockToolResult, ToolUseID: "c2", Content: "no such file", IsError: true},
			}),
		},
	}

	acc := Accumulate(msgs, BillingTotal)
	tools := toolStats(acc)
	if len(tools) != 2 {
		t.Fatalf("tools = %+v", tools)
	}
	bash := tools[0]
	if bash.ToolName != "Bash" || bash.UsageCount != 2 {
		t.Errorf("bash = %+v", bash)
	}
	if bash.SuccessRate != 0.5 {
		t.Errorf("bash success rate = %v, want 0.5", bash.SuccessRate)
	}
	if tools[1].ToolName != "Read" || tools[1].SuccessRate != 1 {
		t.Errorf("read = %+v", tools[1])
	}
}

func TestAccumulateModelBuckets(t *testing.T) {
	msgs := []model.Message{
		usageMsg("user", "2024-03-01T10:00:00Z", 10, 0),
		{
			UUID: "a1", SessionID: "s1", Timestamp: "2024-03-01T10:01:00Z", Type: "assistant",
			Model: "claude-sonnet-4-5",
			Usage: &model.TokenUsage{InputTokens: model.Uint64(100), OutputTokens: model.Uint64(40)},
		},
		{
			UUID: "a2", SessionID: "s1", Timestamp: "2024-03-01T10:02:00Z", Type: "assistant",
			Model: "gpt-5-codex",
			Usage: &model.TokenUsage{OutputTokens: model.Uint64(300)},
		},
	}

	acc := Accumulate(msgs, BillingTotal)
	models := modelStats(acc)
	if len(models) != 2 {
		t.Fatalf("models = %+v", models)
	}
	// Sorted by token count descending.
	if models[0].ModelName != "gpt-5-codex" || models[0].TokenCount != 300 {
		t.Errorf("top model = %+v", models[0])
	}
	if models[1].ModelName != "claude-sonnet-4-5" || models[1].MessageCount != 1 {
		t.Errorf("second model = %+v", models[1])
	}
}

func TestAccumulateHeatmap(t *testing.T) {
	// 2024-03-01 is a Friday (weekday 5).
	msgs := []model.Message{
		usageMsg("user", "2024-03-01T10:00:00Z", 10, 0),
		usageMsg("assistant", "2024-03-01T10:30:00Z", 0, 20),
		usageMsg("user", "2024-03-01T14:00:00Z", 5, 0),
	}

	acc := Accumulate(msgs, BillingTotal)
	cells := heatmapCells(acc)
	if len(cells) != 2 {
		t.Fatalf("cells = %+v", cells)
	}
	if cells[0].Day != 5 || cells[0].Hour != 10 || cells[0].ActivityCount != 2 || cells[0].TokensUsed != 30 {
		t.Errorf("10h cell = %+v", cells[0])
	}
	if mostActiveHour(acc) != 10 {
		t.Errorf("mostActiveHour = %d, want 10", mostActiveHour(acc))
	}
}

func TestMergePreservesPerSessionDurations(t *testing.T) {
	a := Accumulate([]model.Message{
		usageMsg("user", "2024-03-01T10:00:00Z", 1, 0),
		usageMsg("user", "2024-03-01T10:20:00Z", 1, 0),
	}, BillingTotal)
	b := Accumulate([]model.Message{
		usageMsg("user", "2024-03-01T10:25:00Z", 1, 0),
		usageMsg("user", "2024-03-01T10:55:00Z", 1, 0),
	}, BillingTotal)

	merged := NewAccumulator()
	merged.Merge(a, DefaultBreakThreshold)
	merged.Merge(b, DefaultBreakThreshold)

	// Re-segmenting the combined timestamps would give 55 minutes; the sum
	// of the per-session durations is 20 + 30.
	if got := merged.Duration(DefaultBreakThreshold); got != 50 {
		t.Errorf("merged duration = %d, want 50", got)
	}
	if merged.Messages != 4 || merged.Tokens.Input != 4 {
		t.Errorf("merged counters = %d msgs, %+v", merged.Messages, merged.Tokens)
	}
}
