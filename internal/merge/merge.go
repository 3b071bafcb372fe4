// Package merge folds standalone tool-result records into the assistant
// message that issued the matching tool invocation, so one exchange reads as
// one message.
package merge

import "github.com/theirongolddev/aislog/internal/model"

// ToolResults scans messages in order and appends every tool_result block to
// the nearest prior assistant message containing the matching tool_use block.
// Only user records with block-array content are merge candidates. Blocks
// that find no match are never discarded: they re-emit, together with any
// non-tool content, as a residual message in the original position. The
// incoming record disappears only when every one of its blocks merged.
func ToolResults(messages []model.Message) []model.Message {
	merged := make([]model.Message, 0, len(messages))

	for _, msg := range messages {
		if msg.Type != "user" || !msg.Content.IsBlocks() {
			merged = append(merged, msg)
			continue
		}

		var remaining []model.ContentBlock
		for _, block := range msg.Content.Blocks {
			if block.Type != model.BlockToolResult || block.ToolUseID == "" {
				remaining = append(remaining, block)
				continue
			}
			if target := findToolUse(merged, block.ToolUseID); target >= 0 {
				merged[target].Content.Blocks = append(merged[target].Content.Blocks, block)
			} else {
				remaining = append(remaining, block)
			}
		}

		if len(remaining) > 0 {
			residual := msg
			residual.Content = model.BlockContent(remaining)
			merged = append(merged, residual)
		}
	}

	return merged
}

// findToolUse searches backward for the assistant message holding the
// tool_use block with the given id. Returns -1 when no message matches.
func findToolUse(messages []model.Message, toolUseID string) int {
	for i := len(messages) - 1; i >= 0; i-- {
		m := &messages[i]
		if m.Type != "assistant" || !m.Content.IsBlocks() {
			continue
		}
		for _, b := range m.Content.Blocks {
			if b.Type == model.BlockToolUse && b.ID == toolUseID {
				return i
			}
		}
	}
	return -1
}
