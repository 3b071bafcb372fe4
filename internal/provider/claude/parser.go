// Package claude reads Claude Code JSONL session logs: one JSON object per
// line, grouped into per-project directories under ~/.claude/projects.
package claude

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/aislog/internal/model"
)

// ParseLine decodes one JSONL line into a unified message. Malformed JSON
// yields nil, never an error: a bad line must not abort the batch. Records
// missing both session id and timestamp are dropped as unusable; any other
// missing essential is backfilled. Summary records are emitted only when
// includeSummary is set.
func ParseLine(lineNum int, line []byte, includeSummary bool) *model.Message {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}

	var entry rawEntry
	if err := json.Unmarshal(line, &entry); err != nil || entry.Type == "" {
		return nil
	}

	if entry.Type == "summary" {
		if !includeSummary || entry.Summary == "" {
			return nil
		}
		return &model.Message{
			UUID:       orGenerated(entry.UUID, lineNum),
			ParentUUID: entry.LeafUUID,
			SessionID:  orDefault(entry.SessionID, "unknown-session"),
			Timestamp:  orNow(entry.Timestamp),
			Type:       "summary",
			Content:    model.TextContent(entry.Summary),
			Provider:   model.ProviderClaude,
		}
	}

	if entry.SessionID == nil && entry.Timestamp == nil {
		return nil
	}

	msg := &model.Message{
		UUID:        orGenerated(entry.UUID, lineNum),
		ParentUUID:  entry.ParentUUID,
		SessionID:   orDefault(entry.SessionID, "unknown-session"),
		Timestamp:   orNow(entry.Timestamp),
		Type:        entry.Type,
		Content:     decodeContent(entry),
		IsSidechain: entry.IsSidechain,
		Provider:    model.ProviderClaude,
		CostUSD:     entry.CostUSD,
	}
	if m := entry.Message; m != nil {
		msg.Role = m.Role
		msg.Model = m.Model
		msg.StopReason = m.StopReason
	}
	msg.Usage = extractUsage(&entry)

	return msg
}

// orGenerated backfills a missing uuid with a line-positional suffix so the
// generated id stays unique within the file.
func orGenerated(id *string, lineNum int) string {
	if id != nil && *id != "" {
		return *id
	}
	return fmt.Sprintf("%s-line-%d", uuid.NewString(), lineNum+1)
}

func orDefault(s *string, def string) string {
	if s != nil && *s != "" {
		return *s
	}
	return def
}

func orNow(s *string) string {
	if s != nil && *s != "" {
		return *s
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// decodeContent picks the message body: the nested message.content when
// present, else the top-level content field. Object-shaped content (used by
// progress records for structured data) has no display form and yields nil.
func decodeContent(entry rawEntry) *model.ContentValue {
	raw := entry.Content
	if entry.Message != nil && len(entry.Message.Content) > 0 {
		raw = entry.Message.Content
	}
	if len(raw) == 0 {
		return nil
	}
	var cv model.ContentValue
	if err := json.Unmarshal(raw, &cv); err != nil {
		return nil
	}
	return &cv
}

// extractUsage reads token usage with a fixed priority: message.usage, then
// a usage object embedded in content, then toolUseResult.usage, then
// toolUseResult.totalTokens attributed to output for assistant records and
// input otherwise.
func extractUsage(entry *rawEntry) *model.TokenUsage {
	if entry.Message != nil && entry.Message.Usage.HasTokenFields() {
		return entry.Message.Usage
	}

	if len(entry.Content) > 0 && entry.Content[0] == '{' {
		var embedded struct {
			Usage *model.TokenUsage `json:"usage"`
		}
		if err := json.Unmarshal(entry.Content, &embedded); err == nil &&
			embedded.Usage.HasTokenFields() {
			return embedded.Usage
		}
	}

	if len(entry.ToolUseResult) > 0 {
		var tur rawToolUseResult
		if err := json.Unmarshal(entry.ToolUseResult, &tur); err == nil {
			if tur.Usage.HasTokenFields() {
				return tur.Usage
			}
			if tur.TotalTokens != nil {
				u := &model.TokenUsage{}
				if entry.Type == "assistant" {
					u.OutputTokens = tur.TotalTokens
				} else {
					u.InputTokens = tur.TotalTokens
				}
				return u
			}
		}
	}

	return nil
}

// Byte patterns for fast line classification.
var (
	patTypeKey     = []byte(`"type"`)
	patSidechainT1 = []byte(`"isSidechain":true`)
	patSidechainT2 = []byte(`"isSidechain": true`)
)

// classifyLine decides whether a line counts as a valid message record
// without fully decoding it. Summary records never count; sidechain records
// are excluded on request. Used to size paginated loads cheaply.
func classifyLine(line []byte, excludeSidechain bool) bool {
	if len(bytes.TrimSpace(line)) == 0 {
		return false
	}
	typ := extractTopLevelType(line)
	if typ == "" || typ == "summary" {
		return false
	}
	if excludeSidechain &&
		(bytes.Contains(line, patSidechainT1) || bytes.Contains(line, patSidechainT2)) {
		return false
	}
	return true
}

// extractTopLevelType finds the top-level "type" field via byte scanning.
// Tracks brace depth and string boundaries so nested "type" keys are ignored;
// early-exits once found.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], patTypeKey) {
				val, isKey := typeValueAt(line, i+len(patTypeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// typeValueAt checks whether pos follows a JSON key (expects : then a string
// value) and returns the value. isKey=false means "type" appeared as a value.
func typeValueAt(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 40 {
		return "", true
	}
	return string(line[i : i+end]), true
}

func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
