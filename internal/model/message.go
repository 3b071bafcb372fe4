// Package model defines the unified message, session, and statistics types
// shared by all provider backends.
package model

import (
	"encoding/json"
	"time"
)

// ProviderID identifies one of the supported log providers.
type ProviderID string

const (
	ProviderClaude   ProviderID = "claude"
	ProviderCodex    ProviderID = "codex"
	ProviderOpenCode ProviderID = "opencode"
)

// DisplayName returns the human-readable provider name.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderClaude:
		return "Claude Code"
	case ProviderCodex:
		return "Codex CLI"
	case ProviderOpenCode:
		return "OpenCode"
	}
	return string(p)
}

// AllProviders lists the supported providers in canonical order.
func AllProviders() []ProviderID {
	return []ProviderID{ProviderClaude, ProviderCodex, ProviderOpenCode}
}

// Block type constants for ContentBlock.Type.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockThinking   = "thinking"
	BlockImage      = "image"
)

// ContentBlock is one typed element of a block-array message body.
// Which fields are populated depends on Type.
type ContentBlock struct {
	Type string `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   any    `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`

	// thinking
	Thinking string `json:"thinking,omitempty"`
}

// ContentValue is a message body that is either a plain string or an ordered
// list of typed blocks. A nil Blocks slice means the string form.
type ContentValue struct {
	Text   string
	Blocks []ContentBlock
}

// TextContent wraps a plain string body.
func TextContent(s string) *ContentValue {
	return &ContentValue{Text: s}
}

// BlockContent wraps a block-array body.
func BlockContent(blocks []ContentBlock) *ContentValue {
	return &ContentValue{Blocks: blocks}
}

// IsBlocks reports whether the body is the block-array form.
func (c *ContentValue) IsBlocks() bool {
	return c != nil && c.Blocks != nil
}

// UnmarshalJSON accepts either a JSON string or an array of blocks.
func (c *ContentValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Blocks = nil
		return nil
	}
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	c.Blocks = blocks
	return nil
}

// MarshalJSON emits the string form when no blocks are present.
func (c ContentValue) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// TokenUsage holds the four token counters attached to a message. Nil fields
// mean "not reported", which is distinct from zero; Total treats them as zero.
type TokenUsage struct {
	InputTokens              *uint64 `json:"input_tokens,omitempty"`
	OutputTokens             *uint64 `json:"output_tokens,omitempty"`
	CacheCreationInputTokens *uint64 `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     *uint64 `json:"cache_read_input_tokens,omitempty"`
	ServiceTier              string  `json:"service_tier,omitempty"`
}

// HasTokenFields reports whether any counter is present.
func (u *TokenUsage) HasTokenFields() bool {
	if u == nil {
		return false
	}
	return u.InputTokens != nil || u.OutputTokens != nil ||
		u.CacheCreationInputTokens != nil || u.CacheReadInputTokens != nil
}

// Total sums all counters, treating absent fields as zero.
func (u *TokenUsage) Total() uint64 {
	if u == nil {
		return 0
	}
	return deref(u.InputTokens) + deref(u.OutputTokens) +
		deref(u.CacheCreationInputTokens) + deref(u.CacheReadInputTokens)
}

func deref(v *uint64) uint64 {
	if v == nil {
		return 0
	}
	return *v
}

// Uint64 returns a pointer to v, for building TokenUsage literals.
func Uint64(v uint64) *uint64 { return &v }

// Message is the unified record emitted by every provider parser.
type Message struct {
	UUID        string        `json:"uuid"`
	ParentUUID  string        `json:"parentUuid,omitempty"`
	SessionID   string        `json:"sessionId"`
	Timestamp   string        `json:"timestamp"`
	Type        string        `json:"type"`
	Content     *ContentValue `json:"content,omitempty"`
	Role        string        `json:"role,omitempty"`
	Model       string        `json:"model,omitempty"`
	StopReason  string        `json:"stopReason,omitempty"`
	Usage       *TokenUsage   `json:"usage,omitempty"`
	IsSidechain bool          `json:"isSidechain,omitempty"`
	Provider    ProviderID    `json:"provider,omitempty"`
	ProjectName string        `json:"projectName,omitempty"`
	CostUSD     *float64      `json:"costUSD,omitempty"`
}

// Time parses the message timestamp. Timestamps are stored as strings and
// parsed lazily because most passes never need the parsed form.
func (m *Message) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.Timestamp)
}

// FirstText returns the first text content of the message, or "".
func (m *Message) FirstText() string {
	if m.Content == nil {
		return ""
	}
	if !m.Content.IsBlocks() {
		return m.Content.Text
	}
	for _, b := range m.Content.Blocks {
		if b.Type == BlockText && b.Text != "" {
			return b.Text
		}
	}
	return ""
}

// HasToolUse reports whether the message carries any tool_use block.
func (m *Message) HasToolUse() bool {
	if m.Content == nil || !m.Content.IsBlocks() {
		return false
	}
	for _, b := range m.Content.Blocks {
		if b.Type == BlockToolUse {
			return true
		}
	}
	return false
}
