package codex

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/theirongolddev/aislog/internal/lineindex"
	"github.com/theirongolddev/aislog/internal/model"
)

// ParseRollout decodes every message of a rollout file into unified form.
// Rollout files interleave envelope kinds: session_meta names the session,
// turn_context carries the model forward, response_item holds the
// conversation, compacted marks a conversation-compaction boundary, and
// event_msg reports cumulative token counters that are converted to
// per-message deltas here.
func ParseRollout(data []byte) []model.Message {
	var (
		messages     []model.Message
		sessionID    string
		currentModel string
		prevInput    uint64
		prevOutput   uint64
		counter      uint64
	)

	for _, r := range lineindex.FindLineRanges(data) {
		var env rawEnvelope
		if err := json.Unmarshal(r.Line(data), &env); err != nil {
			continue
		}

		switch env.Type {
		case "session_meta":
			var meta rawSessionMeta
			if err := json.Unmarshal(env.Payload, &meta); err == nil {
				sessionID = meta.ID
				if sessionID == "" {
					sessionID = "unknown"
				}
			}
		case "turn_context":
			var tc rawTurnContext
			if err := json.Unmarshal(env.Payload, &tc); err == nil && tc.Model != "" {
				currentModel = tc.Model
			}
		case "response_item":
			var item rawItem
			if err := json.Unmarshal(env.Payload, &item); err != nil || item.Type == "" {
				continue
			}
			counter++
			if msg := convertItem(&item, sessionID, currentModel, env.Timestamp, counter); msg != nil {
				messages = append(messages, *msg)
			}
		case "compacted":
			var c rawCompacted
			_ = json.Unmarshal(env.Payload, &c)
			text := c.Message
			if text == "" {
				text = "[Context compacted]"
			}
			counter++
			messages = append(messages, model.Message{
				UUID:      fmt.Sprintf("codex-%d", counter),
				SessionID: sessionID,
				Timestamp: env.Timestamp,
				Type:      "system",
				Role:      "system",
				Provider:  model.ProviderCodex,
				Content: model.BlockContent([]model.ContentBlock{{
					Type: model.BlockText,
					Text: text,
				}}),
			})
		case "event_msg":
			var ev rawEvent
			if err := json.Unmarshal(env.Payload, &ev); err != nil || ev.Type != "token_count" {
				continue
			}
			deltaIn := saturatingSub(ev.InputTokens, prevInput)
			deltaOut := saturatingSub(ev.OutputTokens, prevOutput)
			prevInput, prevOutput = ev.InputTokens, ev.OutputTokens

			// The counters describe the turn that just finished, so they
			// attach to the newest assistant message still missing usage.
			if n := len(messages); n > 0 {
				last := &messages[n-1]
				if last.Type == "assistant" && last.Usage == nil {
					last.Usage = &model.TokenUsage{
						InputTokens:  model.Uint64(deltaIn),
						OutputTokens: model.Uint64(deltaOut),
					}
				}
			}
		}
	}
	return messages
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

// convertItem maps one response item to a unified message, or nil for item
// kinds that carry no conversation content.
func convertItem(item *rawItem, sessionID, currentModel, envTimestamp string, counter uint64) *model.Message {
	uuid := item.ID
	if uuid == "" {
		uuid = fmt.Sprintf("codex-%d", counter)
	}
	ts := item.CreatedAt
	if ts == "" {
		ts = envTimestamp
	}

	msg := &model.Message{
		UUID:      uuid,
		SessionID: sessionID,
		Timestamp: ts,
		Provider:  model.ProviderCodex,
	}

	switch item.Type {
	case "message":
		role := item.Role
		if role == "" {
			role = "user"
		}
		msg.Role = role
		if role == "user" {
			msg.Type = "user"
		} else {
			msg.Type = "assistant"
			msg.Model = currentModel
		}
		msg.Content = convertParts(item.Content)

	case "local_shell_call":
		msg.Type = "assistant"
		msg.Role = "assistant"
		msg.Model = currentModel
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:  model.BlockToolUse,
			ID:    item.CallID,
			Name:  "Bash",
			Input: map[string]any{"command": commandString(item.Action)},
		}})

	case "function_call":
		name := item.Name
		if name == "" {
			name = "unknown"
		}
		input := map[string]any{}
		if item.Arguments != "" {
			if err := json.Unmarshal([]byte(item.Arguments), &input); err != nil {
				input = map[string]any{}
			}
		}
		msg.Type = "assistant"
		msg.Role = "assistant"
		msg.Model = currentModel
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:  model.BlockToolUse,
			ID:    item.CallID,
			Name:  name,
			Input: input,
		}})

	case "custom_tool_call":
		name := item.Name
		if name == "" {
			name = "unknown"
		}
		input := map[string]any{}
		if len(item.Input) > 0 {
			var s string
			if err := json.Unmarshal(item.Input, &s); err == nil && s != "" {
				input["input"] = s
			}
		}
		msg.Type = "assistant"
		msg.Role = "assistant"
		msg.Model = currentModel
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:  model.BlockToolUse,
			ID:    item.CallID,
			Name:  name,
			Input: input,
		}})

	case "function_call_output", "custom_tool_call_output":
		var output string
		if len(item.Output) > 0 {
			_ = json.Unmarshal(item.Output, &output)
		}
		msg.Type = "user"
		msg.Role = "user"
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:      model.BlockToolResult,
			ToolUseID: item.CallID,
			Content:   output,
		}})

	case "web_search_call":
		input := map[string]any{}
		if item.Action != nil && item.Action.Query != "" {
			input["query"] = item.Action.Query
		}
		msg.Type = "assistant"
		msg.Role = "assistant"
		msg.Model = currentModel
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:  model.BlockToolUse,
			ID:    item.CallID,
			Name:  "WebSearch",
			Input: input,
		}})

	case "reasoning":
		var texts []string
		for _, part := range item.Summary {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
		if len(texts) == 0 {
			return nil
		}
		msg.Type = "assistant"
		msg.Role = "assistant"
		msg.Model = currentModel
		msg.Content = model.BlockContent([]model.ContentBlock{{
			Type:     model.BlockThinking,
			Thinking: strings.Join(texts, "\n"),
		}})

	default:
		return nil
	}

	return msg
}

// convertParts maps a response content array to text blocks. Refusals become
// bracketed text; unrecognized part kinds are dropped.
func convertParts(raw json.RawMessage) *model.ContentValue {
	var parts []rawPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return nil
	}

	var blocks []model.ContentBlock
	for _, part := range parts {
		switch part.Type {
		case "input_text", "output_text", "text":
			blocks = append(blocks, model.ContentBlock{Type: model.BlockText, Text: part.Text})
		case "refusal":
			refusal := part.Refusal
			if refusal == "" {
				refusal = "Refused"
			}
			blocks = append(blocks, model.ContentBlock{
				Type: model.BlockText,
				Text: "[Refusal] " + refusal,
			})
		}
	}
	if blocks == nil {
		return nil
	}
	return model.BlockContent(blocks)
}

// commandString renders a shell action's command, which is stored as an argv
// array or a single string.
func commandString(action *rawAction) string {
	if action == nil || len(action.Command) == 0 {
		return ""
	}
	var argv []string
	if err := json.Unmarshal(action.Command, &argv); err == nil {
		return strings.Join(argv, " ")
	}
	var s string
	if err := json.Unmarshal(action.Command, &s); err == nil {
		return s
	}
	return ""
}

// previewFromParts pulls a truncated display preview from a content array.
func previewFromParts(raw json.RawMessage) string {
	var parts []rawPart
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	for _, part := range parts {
		switch part.Type {
		case "input_text", "output_text", "text":
			if part.Text != "" {
				return truncateText(part.Text, 200)
			}
		}
	}
	return ""
}

func truncateText(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}
