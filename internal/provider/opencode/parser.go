package opencode

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

func epochMSToRFC3339(ms uint64) string {
	return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano)
}

// processParts folds a message's ordered part files into unified content
// blocks plus any usage and cost the parts report. Token counters and cost
// accumulate across multiple step-finish parts.
func processParts(parts []rawPart) (*model.ContentValue, *model.TokenUsage, *float64) {
	var (
		blocks  []model.ContentBlock
		usage   *model.TokenUsage
		costUSD *float64
	)

	for i := range parts {
		part := &parts[i]
		switch part.Type {
		case "text":
			text := part.Text
			if text == "" {
				_ = json.Unmarshal(part.Content, &text)
			}
			if text != "" {
				blocks = append(blocks, model.ContentBlock{Type: model.BlockText, Text: text})
			}

		case "tool":
			toolName := normalizeToolName(part.Tool)
			toolID := part.CallID
			if toolID == "" {
				toolID = part.ID
			}
			var input map[string]any
			if part.State != nil {
				input = part.State.Input
			}
			if input == nil {
				input = map[string]any{}
			}
			normalizeToolInput(toolName, input)

			blocks = append(blocks, model.ContentBlock{
				Type:  model.BlockToolUse,
				ID:    toolID,
				Name:  toolName,
				Input: input,
			})

			if result, isError, ok := toolResultFromState(part.State); ok {
				blocks = append(blocks, model.ContentBlock{
					Type:      model.BlockToolResult,
					ToolUseID: toolID,
					Content:   result,
					IsError:   isError,
				})
			}

		case "reasoning":
			text := part.Text
			if text == "" {
				text = part.Reasoning
			}
			if text != "" {
				blocks = append(blocks, model.ContentBlock{Type: model.BlockThinking, Thinking: text})
			}

		case "step-finish":
			if part.Tokens != nil {
				usage = sumUsage(usage, usageFromTokens(part.Tokens))
			}
			if part.Cost != nil {
				if costUSD == nil {
					costUSD = new(float64)
				}
				*costUSD += *part.Cost
			}

		case "compaction":
			text := part.Text
			if text == "" {
				text = "[Context compacted]"
			}
			blocks = append(blocks, model.ContentBlock{
				Type: model.BlockText,
				Text: "[Summary] " + text,
			})

		case "patch":
			if len(part.Files) > 0 {
				names := make([]string, 0, len(part.Files))
				for _, f := range part.Files {
					names = append(names, filepath.Base(f))
				}
				blocks = append(blocks, model.ContentBlock{
					Type: model.BlockText,
					Text: "[Patch] " + strings.Join(names, ", "),
				})
			}

		case "file":
			if part.Filename != "" {
				blocks = append(blocks, model.ContentBlock{
					Type: model.BlockText,
					Text: fmt.Sprintf("[File] %s (%s)", part.Filename, part.URL),
				})
			}

			// snapshot, agent, subtask, retry, and step-start parts carry no
			// conversation content.
		}
	}

	var content *model.ContentValue
	if blocks != nil {
		content = model.BlockContent(blocks)
	}
	return content, usage, costUSD
}

// usageFromTokens maps the step-finish token shape onto the unified counters.
// The cache write counter maps to cache creation, cache read to cache read.
func usageFromTokens(t *rawTokens) *model.TokenUsage {
	u := &model.TokenUsage{
		InputTokens:  t.Input,
		OutputTokens: t.Output,
	}
	if t.Cache != nil {
		u.CacheCreationInputTokens = t.Cache.Write
		u.CacheReadInputTokens = t.Cache.Read
	}
	return u
}

// sumUsage adds counters field-wise, preserving absence when neither side
// reports a field.
func sumUsage(a, b *model.TokenUsage) *model.TokenUsage {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &model.TokenUsage{
		InputTokens:              sumOpt(a.InputTokens, b.InputTokens),
		OutputTokens:             sumOpt(a.OutputTokens, b.OutputTokens),
		CacheCreationInputTokens: sumOpt(a.CacheCreationInputTokens, b.CacheCreationInputTokens),
		CacheReadInputTokens:     sumOpt(a.CacheReadInputTokens, b.CacheReadInputTokens),
	}
}

func sumOpt(a, b *uint64) *uint64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return model.Uint64(*a + *b)
	}
}

// toolResultFromState derives a tool_result from the part's state machine.
// Only completed, error, and cancelled states produce a result; error and
// cancelled are flagged as errors.
func toolResultFromState(state *rawToolState) (any, bool, bool) {
	if state == nil {
		return nil, false, false
	}
	switch state.Status {
	case "completed":
		var output any = ""
		if len(state.Output) > 0 {
			if err := json.Unmarshal(state.Output, &output); err != nil {
				output = ""
			}
		}
		return output, false, true
	case "error", "cancelled":
		msg := state.Error
		if msg == "" && len(state.Output) > 0 {
			var s string
			if err := json.Unmarshal(state.Output, &s); err == nil {
				msg = s
			} else {
				msg = string(state.Output)
			}
		}
		if msg == "" {
			msg = "Tool execution failed: " + state.Status
		}
		return msg, true, true
	}
	return nil, false, false
}

// normalizeToolName maps OpenCode's lowercase tool names onto the canonical
// capitalized forms. Unrecognized names pass through unchanged.
func normalizeToolName(name string) string {
	if name == "" {
		return "unknown"
	}
	switch name {
	case "read":
		return "Read"
	case "bash":
		return "Bash"
	case "glob":
		return "Glob"
	case "grep":
		return "Grep"
	case "write":
		return "Write"
	case "edit":
		return "Edit"
	case "todowrite":
		return "TodoWrite"
	case "webfetch":
		return "WebFetch"
	case "task", "call_omo_agent":
		return "Task"
	case "websearch_web_search_exa", "websearch_exa_web_search_exa",
		"web_search", "brave-search_brave_web_search":
		return "WebSearch"
	}
	if strings.HasPrefix(name, "grep_") {
		return "Grep"
	}
	return name
}

// normalizeToolInput renames camelCase input keys to their snake_case
// equivalents in place, and flattens Bash argv arrays into one command
// string. Existing snake_case keys win over their camelCase doubles.
func normalizeToolInput(toolName string, input map[string]any) {
	moveKey(input, "filePath", "file_path")
	moveKey(input, "oldString", "old_string")
	moveKey(input, "newString", "new_string")
	moveKey(input, "replaceAll", "replace_all")
	moveKey(input, "runInBackground", "run_in_background")
	moveKey(input, "allowedDomains", "allowed_domains")
	moveKey(input, "blockedDomains", "blocked_domains")

	if toolName == "Bash" {
		if arr, ok := input["command"].([]any); ok {
			var argv []string
			for _, v := range arr {
				if s, ok := v.(string); ok {
					argv = append(argv, s)
				}
			}
			input["command"] = strings.Join(argv, " ")
		}
	}
}

func moveKey(input map[string]any, from, to string) {
	if _, exists := input[to]; exists {
		return
	}
	if value, ok := input[from]; ok {
		delete(input, from)
		input[to] = value
	}
}
