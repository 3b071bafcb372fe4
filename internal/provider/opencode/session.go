package opencode

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/aislog/internal/merge"
	"github.com/theirongolddev/aislog/internal/model"
)

// VirtualPathPrefix marks OpenCode paths. Projects are "opencode://{project}"
// and sessions "opencode://{project}/{session}"; the store is content
// addressed, so neither maps to a single file.
const VirtualPathPrefix = "opencode://"

// storageIDPattern is the only shape of id that may be joined into storage
// paths. Everything else is rejected before any filesystem access.
var storageIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func isSafeStorageID(id string) bool {
	return id != "" && storageIDPattern.MatchString(id)
}

// Provider reads the OpenCode content-addressed store.
type Provider struct {
	Root string // base dir, normally ~/.local/share/opencode
}

// New returns a provider rooted at baseDir.
func New(baseDir string) *Provider {
	return &Provider{Root: baseDir}
}

// ID implements the provider interface.
func (p *Provider) ID() model.ProviderID { return model.ProviderOpenCode }

func (p *Provider) storageDir(parts ...string) string {
	return filepath.Join(append([]string{p.Root, "storage"}, parts...)...)
}

// jsonFilesIn lists the regular .json files of one directory in name order.
// Symlinks are skipped so a crafted store cannot read outside itself.
func jsonFilesIn(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files
}

func readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// ScanProjects enumerates project documents. Session counts and last
// activity come from the session directory keyed by the project id.
func (p *Provider) ScanProjects() ([]model.Project, error) {
	projectsDir := p.storageDir("project")
	if _, err := os.Stat(projectsDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var projects []model.Project
	for _, path := range jsonFilesIn(projectsDir) {
		var raw rawProject
		if !readJSON(path, &raw) {
			continue
		}
		if !isSafeStorageID(raw.ID) {
			continue
		}

		name := "unknown"
		if raw.Worktree != "" {
			name = filepath.Base(raw.Worktree)
		}

		sessionsDir := p.storageDir("session", raw.ID)
		sessionFiles := jsonFilesIn(sessionsDir)

		lastActivity := latestSessionTime(sessionFiles)
		if lastActivity == "" {
			lastActivity = time.Now().UTC().Format(time.RFC3339)
		}

		projects = append(projects, model.Project{
			Name:         name,
			Path:         VirtualPathPrefix + raw.ID,
			SessionCount: len(sessionFiles),
			LastActivity: lastActivity,
			Provider:     model.ProviderOpenCode,
		})
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].LastActivity > projects[j].LastActivity
	})
	return projects, nil
}

// latestSessionTime finds the newest updated-or-created timestamp across the
// given session documents.
func latestSessionTime(sessionFiles []string) string {
	var latest string
	for _, path := range sessionFiles {
		var raw rawSession
		if !readJSON(path, &raw) || raw.Time == nil {
			continue
		}
		ms := raw.Time.Updated
		if ms == nil {
			ms = raw.Time.Created
		}
		if ms == nil {
			continue
		}
		if t := epochMSToRFC3339(*ms); t > latest {
			latest = t
		}
	}
	return latest
}

// projectDisplayName reads a project document's worktree base name, or "".
func (p *Provider) projectDisplayName(projectID string) string {
	var raw rawProject
	if !readJSON(p.storageDir("project", projectID+".json"), &raw) {
		return ""
	}
	if raw.Worktree == "" {
		return ""
	}
	return filepath.Base(raw.Worktree)
}

// LoadSessions lists the sessions of one project. The path may carry the
// opencode:// prefix or be a bare project id.
func (p *Provider) LoadSessions(projectPath string) ([]model.Session, error) {
	projectID := strings.TrimPrefix(projectPath, VirtualPathPrefix)
	if !isSafeStorageID(projectID) {
		return nil, fmt.Errorf("invalid project path: %s", projectPath)
	}

	projectName := p.projectDisplayName(projectID)

	var sessions []model.Session
	for _, path := range jsonFilesIn(p.storageDir("session", projectID)) {
		var raw rawSession
		if !readJSON(path, &raw) {
			continue
		}
		if !isSafeStorageID(raw.ID) {
			continue
		}

		var createdAt, updatedAt string
		if raw.Time != nil {
			if raw.Time.Created != nil {
				createdAt = epochMSToRFC3339(*raw.Time.Created)
			}
			if raw.Time.Updated != nil {
				updatedAt = epochMSToRFC3339(*raw.Time.Updated)
			}
		}
		if updatedAt == "" {
			updatedAt = createdAt
		}

		stem := strings.TrimSuffix(filepath.Base(path), ".json")

		sessions = append(sessions, model.Session{
			SessionID:       VirtualPathPrefix + projectID + "/" + raw.ID,
			ActualSessionID: raw.ID,
			FilePath:        VirtualPathPrefix + projectID + "/" + stem,
			ProjectName:     projectName,
			MessageCount:    len(jsonFilesIn(p.storageDir("message", raw.ID))),
			FirstMessageAt:  createdAt,
			LastMessageAt:   updatedAt,
			Summary:         raw.Title,
			Provider:        model.ProviderOpenCode,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastMessageAt > sessions[j].LastMessageAt
	})
	return sessions, nil
}

// splitSessionPath parses "opencode://{project}/{session}" and validates both
// ids.
func splitSessionPath(sessionPath string) (projectID, sessionID string, err error) {
	trimmed := strings.TrimPrefix(sessionPath, VirtualPathPrefix)
	projectID, sessionID, found := strings.Cut(trimmed, "/")
	if !found {
		return "", "", fmt.Errorf("invalid session path: %s", sessionPath)
	}
	if !isSafeStorageID(projectID) || !isSafeStorageID(sessionID) {
		return "", "", fmt.Errorf("invalid session path: %s", sessionPath)
	}
	return projectID, sessionID, nil
}

// LoadMessages returns one page of a session in chat order: offset 0 is the
// window ending at the newest message.
func (p *Provider) LoadMessages(sessionPath string, offset, limit int) (*model.PaginatedMessages, error) {
	all, err := p.LoadAllMessages(sessionPath)
	if err != nil {
		return nil, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	total := len(all)
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

	page.Items = merge.ToolResults(all[start:end])
	page.HasMore = start > 0
	return page, nil
}

// LoadAllMessages assembles every message of a session from the message and
// part directories. Message files are read in name order, which is id order.
func (p *Provider) LoadAllMessages(sessionPath string) ([]model.Message, error) {
	_, sessionID, err := splitSessionPath(sessionPath)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	for _, path := range jsonFilesIn(p.storageDir("message", sessionID)) {
		var raw rawMessage
		if !readJSON(path, &raw) {
			continue
		}
		if !isSafeStorageID(raw.ID) {
			continue
		}

		parts := p.readParts(raw.ID)
		content, partsUsage, partsCost := processParts(parts)

		usage := partsUsage
		if raw.Tokens != nil {
			usage = &model.TokenUsage{
				InputTokens:  raw.Tokens.Input,
				OutputTokens: raw.Tokens.Output,
			}
		}
		cost := partsCost
		if raw.Cost != nil {
			cost = raw.Cost
		}

		var timestamp string
		if raw.Time != nil && raw.Time.Created != nil {
			timestamp = epochMSToRFC3339(*raw.Time.Created)
		}

		role := raw.Role
		if role == "" {
			role = "user"
		}
		msgType := "user"
		switch role {
		case "assistant":
			msgType = "assistant"
		case "system":
			msgType = "system"
		}

		messages = append(messages, model.Message{
			UUID:       raw.ID,
			ParentUUID: raw.ParentID,
			SessionID:  sessionID,
			Timestamp:  timestamp,
			Type:       msgType,
			Content:    content,
			Role:       role,
			Model:      raw.ModelID,
			Usage:      usage,
			Provider:   model.ProviderOpenCode,
			CostUSD:    cost,
		})
	}
	return messages, nil
}

// readParts loads and orders the part documents of one message.
func (p *Provider) readParts(messageID string) []rawPart {
	var parts []rawPart
	for _, path := range jsonFilesIn(p.storageDir("part", messageID)) {
		var part rawPart
		if readJSON(path, &part) {
			parts = append(parts, part)
		}
	}
	return parts
}
