package claude

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/aislog/internal/lineindex"
	"github.com/theirongolddev/aislog/internal/merge"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/pipeline"
)

// Provider reads the Claude Code data directory.
type Provider struct {
	Root string // base dir, normally ~/.claude
}

// New returns a provider rooted at baseDir.
func New(baseDir string) *Provider {
	return &Provider{Root: baseDir}
}

// ID implements the provider interface.
func (p *Provider) ID() model.ProviderID { return model.ProviderClaude }

func (p *Provider) projectsDir() string {
	return filepath.Join(p.Root, "projects")
}

// ScanProjects enumerates project directories under the projects root. An
// absent root means zero projects, not an error.
func (p *Provider) ScanProjects() ([]model.Project, error) {
	entries, err := os.ReadDir(p.projectsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var projects []model.Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(p.projectsDir(), entry.Name())

		sessionCount := 0
		var lastActivity time.Time
		_ = filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || filepath.Ext(path) != ".jsonl" {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			sessionCount++
			if info, err := d.Info(); err == nil && info.ModTime().After(lastActivity) {
				lastActivity = info.ModTime()
			}
			return nil
		})

		proj := model.Project{
			Name:         decodeProjectName(entry.Name()),
			Path:         dirPath,
			SessionCount: sessionCount,
			Provider:     model.ProviderClaude,
		}
		if !lastActivity.IsZero() {
			proj.LastActivity = lastActivity.UTC().Format(time.RFC3339)
		}
		projects = append(projects, proj)
	}
	return projects, nil
}

// LoadSessions extracts one session per JSONL file under projectPath, then
// back-fills summaries across files sharing the same actual session id.
func (p *Provider) LoadSessions(projectPath string) ([]model.Session, error) {
	files, err := SessionFiles(projectPath)
	if err != nil {
		return nil, err
	}

	results := pipeline.Map(files, nil, func(path string) *model.Session {
		return sessionFromFile(path)
	})

	var sessions []model.Session
	for _, s := range results {
		if s != nil {
			sessions = append(sessions, *s)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastMessageAt > sessions[j].LastMessageAt
	})

	propagateSummaries(sessions)
	return sessions, nil
}

// propagateSummaries copies a summary onto sibling sessions that share the
// same actual session id but were stored in a file without one.
func propagateSummaries(sessions []model.Session) {
	summaries := make(map[string]string)
	for _, s := range sessions {
		if s.Summary != "" {
			summaries[s.ActualSessionID] = s.Summary
		}
	}
	for i := range sessions {
		if sessions[i].Summary == "" {
			if sum, ok := summaries[sessions[i].ActualSessionID]; ok {
				sessions[i].Summary = sum
			}
		}
	}
}

// SessionFiles lists every JSONL session file under dir.
func SessionFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if !d.IsDir() && filepath.Ext(path) == ".jsonl" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// AllSessionFiles lists every session file across every project.
func (p *Provider) AllSessionFiles() ([]string, error) {
	return SessionFiles(p.projectsDir())
}

// sessionFromFile extracts session metadata from one JSONL file. Files with
// no usable message records yield nil: a lone summary is not a session.
func sessionFromFile(path string) *model.Session {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var (
		count        int
		summary      string
		actualID     string
		firstTS      string
		lastTS       string
		hasToolUse   bool
		hasErrors    bool
		userFallback string
	)

	for _, r := range lineindex.FindLineRanges(data) {
		line := r.Line(data)
		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil || entry.Type == "" {
			continue
		}

		if entry.Type == "summary" {
			if summary == "" {
				summary = entry.Summary
			}
			continue
		}
		if entry.SessionID == nil && entry.Timestamp == nil {
			continue
		}

		count++
		ts := orNow(entry.Timestamp)
		if firstTS == "" {
			firstTS = ts
		}
		lastTS = ts

		if actualID == "" {
			if sid := orDefault(entry.SessionID, "unknown-session"); sid != "unknown-session" {
				actualID = sid
			}
		}

		if !hasToolUse {
			hasToolUse = entryHasToolUse(&entry)
		}
		if !hasErrors && len(entry.ToolUseResult) > 0 {
			var tur rawToolUseResult
			if err := json.Unmarshal(entry.ToolUseResult, &tur); err == nil && tur.Stderr != "" {
				hasErrors = true
			}
		}

		if userFallback == "" && entry.Type == "user" {
			if cv := decodeContent(entry); cv != nil {
				if text := extractUserText(cv); text != "" {
					userFallback = text
				}
			}
		}
	}

	if count == 0 {
		return nil
	}
	if actualID == "" {
		actualID = "unknown-session"
	}
	if summary == "" {
		summary = userFallback
	}

	return &model.Session{
		SessionID:       path,
		ActualSessionID: actualID,
		FilePath:        path,
		ProjectName:     decodeProjectName(filepath.Base(filepath.Dir(path))),
		MessageCount:    count,
		FirstMessageAt:  firstTS,
		LastMessageAt:   lastTS,
		HasToolUse:      hasToolUse,
		HasErrors:       hasErrors,
		Summary:         summary,
		Provider:        model.ProviderClaude,
	}
}

func entryHasToolUse(entry *rawEntry) bool {
	if len(entry.ToolUse) > 0 || len(entry.ToolUseResult) > 0 {
		return true
	}
	if entry.Type != "assistant" {
		return false
	}
	cv := decodeContent(*entry)
	if cv == nil || !cv.IsBlocks() {
		return false
	}
	for _, b := range cv.Blocks {
		if b.Type == model.BlockToolUse {
			return true
		}
	}
	return false
}

// LoadMessages returns one page of a session file in chat order: offset 0 is
// the window ending at the newest record. A classification pass sizes the
// window so only the requested lines are fully decoded. Tool results are
// folded into their invoking messages.
func (p *Provider) LoadMessages(sessionPath string, offset, limit int) (*model.PaginatedMessages, error) {
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}

	ranges := lineindex.FindLineRanges(data)
	var validIdx []int
	for i, r := range ranges {
		if classifyLine(r.Line(data), false) {
			validIdx = append(validIdx, i)
		}
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	total := len(validIdx)
	page := &model.PaginatedMessages{
		TotalCount: total,
		Offset:     offset,
		Limit:      limit,
	}
	if total == 0 {
		return page, nil
	}

	remaining := total - offset
	if remaining < 0 {
		remaining = 0
	}
	toLoad := limit
	if toLoad > remaining {
		toLoad = remaining
	}
	start := total - offset - toLoad
	end := total - offset
	if remaining == 0 {
		start, end = 0, 0
	}

	var messages []model.Message
	for _, idx := range validIdx[start:end] {
		if msg := ParseLine(idx, ranges[idx].Line(data), false); msg != nil {
			messages = append(messages, *msg)
		}
	}

	page.Items = merge.ToolResults(messages)
	page.HasMore = start > 0
	return page, nil
}

// LoadAllMessages implements the provider capability surface.
func (p *Provider) LoadAllMessages(sessionPath string) ([]model.Message, error) {
	return LoadAllMessages(sessionPath)
}

// LoadAllMessages decodes every record of a session file, summaries included.
func LoadAllMessages(path string) ([]model.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	for i, r := range lineindex.FindLineRanges(data) {
		if msg := ParseLine(i, r.Line(data), true); msg != nil {
			messages = append(messages, *msg)
		}
	}
	return messages, nil
}

// MessageCount counts the valid message records of a session file.
func (p *Provider) MessageCount(sessionPath string, excludeSidechain bool) (int, error) {
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range lineindex.FindLineRanges(data) {
		if classifyLine(r.Line(data), excludeSidechain) {
			count++
		}
	}
	return count, nil
}

// isGenuineUserText filters out system-generated text when picking a session
// preview: XML-ish payloads and known boilerplate phrases.
func isGenuineUserText(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		return false
	}
	for _, phrase := range []string{
		"Session Cleared",
		"session cleared",
		"Caveat:",
		"Tool execution",
	} {
		if strings.HasPrefix(trimmed, phrase) {
			return false
		}
	}
	return true
}

func truncateText(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}

// extractUserText pulls a display preview from a message body, or "".
func extractUserText(cv *model.ContentValue) string {
	if !cv.IsBlocks() {
		if isGenuineUserText(cv.Text) {
			return truncateText(cv.Text, 100)
		}
		return ""
	}
	for _, b := range cv.Blocks {
		if b.Type == model.BlockText && isGenuineUserText(b.Text) {
			return truncateText(b.Text, 100)
		}
	}
	return ""
}

// decodeProjectName extracts a display name from the dash-encoded directory
// name Claude Code uses (absolute path with "/" replaced by "-"):
//
//	"-Users-alice-projects-gitlore" -> "gitlore"
//	"-Users-alice-projects-my-cool-project" -> "my-cool-project"
//
// The last known parent marker ("projects", "repos", ...) wins; otherwise the
// last non-empty segment.
func decodeProjectName(dirName string) string {
	parts := strings.Split(dirName, "-")

	knownParents := map[string]bool{
		"projects": true, "repos": true, "src": true,
		"code": true, "workspace": true, "dev": true,
	}

	for i := len(parts) - 2; i >= 0; i-- {
		if knownParents[strings.ToLower(parts[i])] {
			name := strings.Join(parts[i+1:], "-")
			if name != "" {
				return name
			}
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}

	return dirName
}
