package codex

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

// VirtualPathPrefix marks Codex project paths, which are working directories
// recorded in session metadata rather than storage directories.
const VirtualPathPrefix = "codex://"

// Provider reads the Codex CLI data directory.
type Provider struct {
	Root string // base dir, normally ~/.codex
}

// New returns a provider rooted at baseDir.
func New(baseDir string) *Provider {
	return &Provider{Root: baseDir}
}

// ID implements the provider interface.
func (p *Provider) ID() model.ProviderID { return model.ProviderCodex }

// RolloutFiles lists every rollout file under the sessions directory and its
// archived sibling. Missing directories contribute nothing.
func (p *Provider) RolloutFiles() ([]string, error) {
	var files []string
	for _, dir := range []string{
		filepath.Join(p.Root, "sessions"),
		filepath.Join(p.Root, "archived_sessions"),
	} {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // intentionally skip unreadable entries
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if strings.HasPrefix(name, "rollout-") && filepath.Ext(name) == ".jsonl" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return files, nil
}

// sessionInfo pairs extracted session metadata with the working directory
// that groups sessions into projects.
type sessionInfo struct {
	session model.Session
	cwd     string
}

// ScanProjects groups rollout files by the working directory recorded in
// their session metadata. Sessions without one land in an "unknown" bucket.
func (p *Provider) ScanProjects() ([]model.Project, error) {
	files, err := p.RolloutFiles()
	if err != nil {
		return nil, err
	}

	infos := pipeline.Map(files, nil, extractSessionInfo)

	grouped := make(map[string][]*sessionInfo)
	for _, info := range infos {
		if info == nil {
			continue
		}
		cwd := info.cwd
		if cwd == "" {
			cwd = "unknown"
		}
		grouped[cwd] = append(grouped[cwd], info)
	}

	var projects []model.Project
	for cwd, sessions := range grouped {
		proj := model.Project{
			Name:         filepath.Base(cwd),
			Path:         VirtualPathPrefix + cwd,
			SessionCount: len(sessions),
			Provider:     model.ProviderCodex,
		}
		for _, s := range sessions {
			proj.MessageCount += s.session.MessageCount
			if s.session.LastMessageAt > proj.LastActivity {
				proj.LastActivity = s.session.LastMessageAt
			}
		}
		projects = append(projects, proj)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].LastActivity > projects[j].LastActivity
	})
	return projects, nil
}

// LoadSessions lists the sessions whose working directory matches the
// project's. The path may carry the codex:// prefix or be a bare directory.
func (p *Provider) LoadSessions(projectPath string) ([]model.Session, error) {
	targetCwd := strings.TrimPrefix(projectPath, VirtualPathPrefix)

	files, err := p.RolloutFiles()
	if err != nil {
		return nil, err
	}

	infos := pipeline.Map(files, nil, extractSessionInfo)

	var sessions []model.Session
	for _, info := range infos {
		if info == nil || info.cwd != targetCwd {
			continue
		}
		s := info.session
		s.ProjectName = filepath.Base(targetCwd)
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastMessageAt > sessions[j].LastMessageAt
	})
	return sessions, nil
}

// extractSessionInfo scans one rollout file without building messages. Only
// conversation-bearing items count toward the message total; token events and
// turn context are metadata.
func extractSessionInfo(path string) *sessionInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var (
		sessionID  string
		cwd        string
		count      int
		firstTS    string
		lastTS     string
		hasToolUse bool
		summary    string
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
				cwd = meta.Cwd
			}
		case "response_item":
			var item rawItem
			if err := json.Unmarshal(env.Payload, &item); err != nil {
				continue
			}
			switch item.Type {
			case "message":
				count++
				ts := item.CreatedAt
				if ts == "" {
					ts = env.Timestamp
				}
				if ts != "" {
					if firstTS == "" {
						firstTS = ts
					}
					lastTS = ts
				}
				if summary == "" && item.Role == "user" {
					summary = previewFromParts(item.Content)
				}
			case "local_shell_call", "function_call", "custom_tool_call", "web_search_call":
				hasToolUse = true
				count++
			case "function_call_output", "custom_tool_call_output":
				count++
			}
		}
	}

	lastModified := lastTS
	if lastModified == "" {
		if info, err := os.Stat(path); err == nil {
			lastModified = info.ModTime().UTC().Format(time.RFC3339)
		}
	}

	return &sessionInfo{
		session: model.Session{
			SessionID:       path,
			ActualSessionID: sessionID,
			FilePath:        path,
			MessageCount:    count,
			FirstMessageAt:  firstTS,
			LastMessageAt:   lastModified,
			HasToolUse:      hasToolUse,
			Summary:         summary,
			Provider:        model.ProviderCodex,
		},
		cwd: cwd,
	}
}

// LoadMessages returns one page of a rollout file in chat order: offset 0 is
// the window ending at the newest message. Tool results are folded into their
// invoking messages.
func (p *Provider) LoadMessages(sessionPath string, offset, limit int) (*model.PaginatedMessages, error) {
	all, err := LoadAllMessages(sessionPath)
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

// LoadAllMessages implements the provider capability surface.
func (p *Provider) LoadAllMessages(sessionPath string) ([]model.Message, error) {
	return LoadAllMessages(sessionPath)
}

// LoadAllMessages decodes every message of a rollout file.
func LoadAllMessages(path string) ([]model.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rollout file: %w", err)
	}
	return ParseRollout(data), nil
}
