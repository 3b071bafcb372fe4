package claude

import (
	"encoding/json"

	"github.com/theirongolddev/aislog/internal/model"
)

// rawEntry is one line of a Claude Code JSONL session file. Session id and
// timestamp are pointers because "absent" and "empty" mean different things:
// a record missing both is unusable and dropped.
type rawEntry struct {
	Type          string          `json:"type"`
	Subtype       string          `json:"subtype,omitempty"`
	UUID          *string         `json:"uuid"`
	ParentUUID    string          `json:"parentUuid,omitempty"`
	LeafUUID      string          `json:"leafUuid,omitempty"`
	SessionID     *string         `json:"sessionId"`
	Timestamp     *string         `json:"timestamp"`
	IsSidechain   bool            `json:"isSidechain,omitempty"`
	IsMeta        bool            `json:"isMeta,omitempty"`
	Summary       string          `json:"summary,omitempty"`
	Message       *rawMessage     `json:"message,omitempty"`
	Content       json.RawMessage `json:"content,omitempty"`
	ToolUse       json.RawMessage `json:"toolUse,omitempty"`
	ToolUseResult json.RawMessage `json:"toolUseResult,omitempty"`
	CostUSD       *float64        `json:"costUSD,omitempty"`
}

// rawMessage is the nested API message envelope.
type rawMessage struct {
	ID         string            `json:"id,omitempty"`
	Role       string            `json:"role,omitempty"`
	Model      string            `json:"model,omitempty"`
	StopReason string            `json:"stop_reason,omitempty"`
	Content    json.RawMessage   `json:"content,omitempty"`
	Usage      *model.TokenUsage `json:"usage,omitempty"`
}

// rawToolUseResult is the subset of toolUseResult consulted during
// normalization. The full object is free-form.
type rawToolUseResult struct {
	Usage       *model.TokenUsage `json:"usage,omitempty"`
	TotalTokens *uint64           `json:"totalTokens,omitempty"`
	Stderr      string            `json:"stderr,omitempty"`
}
