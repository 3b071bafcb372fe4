package claude

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/theirongolddev/aislog/internal/lineindex"
)

// FileEdit is the reconstructed state of one file after a recorded Edit or
// Write tool call, kept so lost work can be recovered from the logs.
type FileEdit struct {
	FilePath        string `json:"file_path"`
	Timestamp       string `json:"timestamp"`
	SessionID       string `json:"session_id"`
	Operation       string `json:"operation"` // "edit" or "write"
	Content         string `json:"content"`
	OriginalContent string `json:"original_content,omitempty"`
	LinesAdded      int    `json:"lines_added"`
	LinesRemoved    int    `json:"lines_removed"`
	Cwd             string `json:"cwd,omitempty"`
}

// RecentEdits is the per-project edit history: the latest reconstructed
// content for each unique file, newest first.
type RecentEdits struct {
	Files       []FileEdit `json:"files"`
	TotalEdits  int        `json:"total_edits"`
	UniqueFiles int        `json:"unique_files"`
	ProjectCwd  string     `json:"project_cwd,omitempty"`
}

// rawEditLine carries only the fields edit extraction needs from a session
// record. toolUseResult stays raw because its shape varies by tool.
type rawEditLine struct {
	Timestamp     string          `json:"timestamp"`
	SessionID     string          `json:"sessionId"`
	Cwd           string          `json:"cwd"`
	ToolUseResult json.RawMessage `json:"toolUseResult"`
	ToolUse       *rawEditCall    `json:"toolUse"`
}

type rawEditCall struct {
	Name  string `json:"name"`
	Input struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	} `json:"input"`
}

// rawEditResult covers the three toolUseResult shapes that allow full-file
// reconstruction: Write results (type "create" with content), multi-edit
// results (edits array plus originalFile), and single-edit results
// (oldString/newString plus originalFile).
type rawEditResult struct {
	Type         string          `json:"type"`
	FilePath     string          `json:"filePath"`
	Content      string          `json:"content"`
	OldString    *string         `json:"oldString"`
	NewString    *string         `json:"newString"`
	OriginalFile *string         `json:"originalFile"`
	Edits        json.RawMessage `json:"edits"`
}

type rawEditPair struct {
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// RecentEdits scans every session file of a project and reconstructs the
// latest recorded content per file touched by Edit or Write tool calls.
// Results are confined to the project's dominant working directory and
// ordered newest first. Read results are never captured: they are often
// truncated and cannot reconstruct the file.
func (p *Provider) RecentEdits(projectPath string) (*RecentEdits, error) {
	files, err := SessionFiles(projectPath)
	if err != nil {
		return nil, err
	}

	var all []FileEdit
	cwdCounts := make(map[string]int)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, r := range lineindex.FindLineRanges(data) {
			all = append(all, editsFromLine(r.Line(data), cwdCounts)...)
		}
	}

	projectCwd := dominantCwd(cwdCounts)
	if projectCwd != "" {
		filtered := all[:0]
		for _, e := range all {
			if strings.HasPrefix(e.FilePath, projectCwd) {
				filtered = append(filtered, e)
			}
		}
		all = filtered
	}

	result := &RecentEdits{
		TotalEdits: len(all),
		ProjectCwd: projectCwd,
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp > all[j].Timestamp
	})

	// Newest wins per file; earlier states of the same file are dropped.
	seen := make(map[string]bool)
	for _, e := range all {
		if seen[e.FilePath] {
			continue
		}
		seen[e.FilePath] = true
		result.Files = append(result.Files, e)
	}
	result.UniqueFiles = len(result.Files)

	return result, nil
}

// editsFromLine extracts zero or more file edits from one session record and
// counts its working directory toward the project cwd vote.
func editsFromLine(line []byte, cwdCounts map[string]int) []FileEdit {
	var rec rawEditLine
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}

	if rec.Cwd != "" {
		cwdCounts[rec.Cwd]++
	}

	sessionID := rec.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}

	var edits []FileEdit
	add := func(e FileEdit) {
		e.Timestamp = rec.Timestamp
		e.SessionID = sessionID
		e.Cwd = rec.Cwd
		edits = append(edits, e)
	}

	if len(rec.ToolUseResult) > 0 {
		var res rawEditResult
		// Result payloads for other tools are plain strings; those fail to
		// decode and carry no edit anyway.
		if err := json.Unmarshal(rec.ToolUseResult, &res); err == nil {
			if e, ok := editFromResult(&res); ok {
				add(e)
			}
		}
	}

	if rec.ToolUse != nil && rec.ToolUse.Name == "Write" &&
		rec.ToolUse.Input.FilePath != "" && rec.ToolUse.Input.Content != "" {
		add(FileEdit{
			FilePath:   rec.ToolUse.Input.FilePath,
			Operation:  "write",
			Content:    rec.ToolUse.Input.Content,
			LinesAdded: countLines(rec.ToolUse.Input.Content),
		})
	}

	return edits
}

// editFromResult reconstructs a file state from one toolUseResult payload.
func editFromResult(res *rawEditResult) (FileEdit, bool) {
	if res.Type == "create" && res.FilePath != "" && res.Content != "" {
		return FileEdit{
			FilePath:   res.FilePath,
			Operation:  "write",
			Content:    res.Content,
			LinesAdded: countLines(res.Content),
		}, true
	}

	if res.FilePath == "" {
		return FileEdit{}, false
	}

	if len(res.Edits) > 0 && res.OriginalFile != nil {
		var pairs []rawEditPair
		if err := json.Unmarshal(res.Edits, &pairs); err != nil {
			return FileEdit{}, false
		}
		content := *res.OriginalFile
		var added, removed int
		for _, pair := range pairs {
			content = strings.Replace(content, pair.OldString, pair.NewString, 1)
			removed += countLines(pair.OldString)
			added += countLines(pair.NewString)
		}
		return FileEdit{
			FilePath:        res.FilePath,
			Operation:       "edit",
			Content:         content,
			OriginalContent: *res.OriginalFile,
			LinesAdded:      added,
			LinesRemoved:    removed,
		}, true
	}

	// Single edits without originalFile are skipped: the full file cannot be
	// reconstructed from the fragment alone.
	if res.OldString != nil && res.NewString != nil && res.OriginalFile != nil {
		return FileEdit{
			FilePath:        res.FilePath,
			Operation:       "edit",
			Content:         strings.Replace(*res.OriginalFile, *res.OldString, *res.NewString, 1),
			OriginalContent: *res.OriginalFile,
			LinesAdded:      countLines(*res.NewString),
			LinesRemoved:    countLines(*res.OldString),
		}, true
	}

	return FileEdit{}, false
}

// dominantCwd picks the most frequent working directory.
func dominantCwd(counts map[string]int) string {
	var best string
	bestN := 0
	for cwd, n := range counts {
		if n > bestN || (n == bestN && cwd < best) {
			best, bestN = cwd, n
		}
	}
	return best
}

// countLines matches line semantics where a trailing newline does not start
// an extra line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
