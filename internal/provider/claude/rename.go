package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RenameErrorKind classifies rename failures so callers can branch on the
// failure class instead of matching message text.
type RenameErrorKind int

const (
	RenameFileNotFound RenameErrorKind = iota
	RenamePermissionDenied
	RenameInvalidJSON
	RenameIOError
	RenameEmptySession
	RenameNoUserMessage
	RenameUnsupportedContent
)

// RenameError is the structured failure of a rename operation.
type RenameError struct {
	Kind    RenameErrorKind
	Context string
}

func (e *RenameError) Error() string {
	switch e.Kind {
	case RenameFileNotFound:
		return "session file not found: " + e.Context
	case RenamePermissionDenied:
		return "permission denied: " + e.Context
	case RenameInvalidJSON:
		return "invalid JSON format: " + e.Context
	case RenameIOError:
		return "I/O error: " + e.Context
	case RenameEmptySession:
		return "session file is empty"
	case RenameNoUserMessage:
		return "no user message found in session"
	case RenameUnsupportedContent:
		return "message content format not supported"
	}
	return "rename failed: " + e.Context
}

// RenameResult reports a completed rename.
type RenameResult struct {
	PreviousTitle string
	NewTitle      string
	FilePath      string
}

// RenameSessionTitle retitles a session by rewriting its first genuine user
// message: any existing bracket prefix is stripped and the new title is
// prepended as "[title] ". An empty title resets to the original text. The
// file is rewritten via a temp file and atomic rename, and the target path
// must be confined to the provider base directory.
func (p *Provider) RenameSessionTitle(filePath, newTitle string) (*RenameResult, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, &RenameError{Kind: RenameFileNotFound, Context: filePath}
	}
	if err := p.validatePath(filePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &RenameError{Kind: RenameIOError, Context: err.Error()}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return nil, &RenameError{Kind: RenameEmptySession}
	}

	idx, err := findFirstUserMessageIndex(lines)
	if err != nil {
		return nil, err
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[idx]), &record); err != nil {
		return nil, &RenameError{Kind: RenameInvalidJSON, Context: err.Error()}
	}

	current, ok := extractMessageText(record)
	if !ok {
		return nil, &RenameError{Kind: RenameInvalidJSON, Context: "no message field found"}
	}

	base := stripTitlePrefix(current)
	updated := base
	if title := strings.TrimSpace(newTitle); title != "" {
		updated = fmt.Sprintf("[%s] %s", title, base)
	}

	if !updateMessageText(record, updated) {
		return nil, &RenameError{Kind: RenameUnsupportedContent}
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, &RenameError{Kind: RenameInvalidJSON, Context: err.Error()}
	}
	lines[idx] = string(encoded)

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		return nil, &RenameError{Kind: RenameIOError, Context: err.Error()}
	}
	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return nil, &RenameError{Kind: RenameIOError, Context: err.Error()}
	}

	return &RenameResult{
		PreviousTitle: current,
		NewTitle:      updated,
		FilePath:      filePath,
	}, nil
}

// validatePath resolves symlinks and dot components, then requires the
// result to sit under the provider base directory. Traversal attempts are
// rejected outright.
func (p *Provider) validatePath(filePath string) error {
	resolved, err := filepath.EvalSymlinks(filePath)
	if err != nil {
		return &RenameError{Kind: RenameIOError, Context: err.Error()}
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return &RenameError{Kind: RenameIOError, Context: err.Error()}
	}

	base, err := filepath.EvalSymlinks(p.Root)
	if err != nil {
		base = p.Root
	}

	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &RenameError{
			Kind:    RenamePermissionDenied,
			Context: "file path must be within the provider data directory",
		}
	}
	return nil
}

// findFirstUserMessageIndex locates the first user record that is not a meta
// message and carries extractable text content.
func findFirstUserMessageIndex(lines []string) (int, error) {
	for i, line := range lines {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}
		if typ, _ := record["type"].(string); typ != "user" {
			continue
		}
		if isMeta, _ := record["isMeta"].(bool); isMeta {
			continue
		}
		if _, ok := extractMessageText(record); ok {
			return i, nil
		}
	}
	return 0, &RenameError{Kind: RenameNoUserMessage}
}

// extractMessageText handles both shapes of the message field: a direct
// string, or a nested object whose content is a string or a block array.
func extractMessageText(record map[string]any) (string, bool) {
	m, ok := record["message"]
	if !ok {
		return "", false
	}
	if s, ok := m.(string); ok {
		return s, true
	}
	obj, ok := m.(map[string]any)
	if !ok {
		return "", false
	}
	switch content := obj["content"].(type) {
	case string:
		return content, true
	case []any:
		for _, item := range content {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if typ, _ := block["type"].(string); typ != "text" {
				continue
			}
			if text, ok := block["text"].(string); ok {
				return text, true
			}
		}
	}
	return "", false
}

// updateMessageText writes the new text back in whichever shape the record
// uses. Returns false when the content format is not supported.
func updateMessageText(record map[string]any, newText string) bool {
	m, ok := record["message"]
	if !ok {
		return false
	}
	if _, ok := m.(string); ok {
		record["message"] = newText
		return true
	}
	obj, ok := m.(map[string]any)
	if !ok {
		return false
	}
	switch content := obj["content"].(type) {
	case string:
		obj["content"] = newText
		return true
	case []any:
		for _, item := range content {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if typ, _ := block["type"].(string); typ == "text" {
				block["text"] = newText
				return true
			}
		}
	}
	return false
}

// stripTitlePrefix removes an existing "[...]" prefix. Nested brackets are
// not supported; the first closing bracket wins.
func stripTitlePrefix(message string) string {
	if strings.HasPrefix(message, "[") {
		if end := strings.Index(message, "]"); end >= 0 {
			return strings.TrimLeft(message[end+1:], " ")
		}
	}
	return message
}
