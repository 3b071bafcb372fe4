package codex

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/theirongolddev/aislog/internal/lineindex"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/pipeline"
	"github.com/theirongolddev/aislog/internal/search"
)

// Search scans every rollout file for messages matching the query. Files are
// scanned in parallel; the combined list is sorted newest-first and truncated
// to limit.
func (p *Provider) Search(query string, limit int) ([]model.Message, error) {
	files, err := p.RolloutFiles()
	if err != nil {
		return nil, err
	}

	results := pipeline.Map(files, nil, func(path string) []model.Message {
		return searchFile(path, query)
	})

	var matches []model.Message
	for _, r := range results {
		matches = append(matches, r...)
	}

	search.SortNewestFirst(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// searchFile scans one rollout file. I/O failure skips the file; the overall
// search still returns partial results.
func searchFile(path, query string) []model.Message {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	projectName := projectNameFromMeta(data)

	var matches []model.Message
	for _, msg := range ParseRollout(data) {
		if !search.MatchesMessage(&msg, query) {
			continue
		}
		msg.ProjectName = projectName
		matches = append(matches, msg)
	}
	return matches
}

// projectNameFromMeta reads the working directory off the session_meta line,
// which leads the file when present.
func projectNameFromMeta(data []byte) string {
	for _, r := range lineindex.FindLineRanges(data) {
		var env rawEnvelope
		if err := json.Unmarshal(r.Line(data), &env); err != nil {
			continue
		}
		if env.Type != "session_meta" {
			continue
		}
		var meta rawSessionMeta
		if err := json.Unmarshal(env.Payload, &meta); err != nil || meta.Cwd == "" {
			return ""
		}
		return filepath.Base(meta.Cwd)
	}
	return ""
}
