package claude

import (
	"os"
	"path/filepath"

	"github.com/theirongolddev/aislog/internal/lineindex"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/pipeline"
	"github.com/theirongolddev/aislog/internal/search"
)

// Search scans every session file for user and assistant messages matching
// the query. Files are scanned in parallel; the combined list is sorted
// newest-first and truncated to limit.
func (p *Provider) Search(query string, limit int) ([]model.Message, error) {
	files, err := p.AllSessionFiles()
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

// searchFile scans one session file. I/O failure skips the file; the overall
// search still returns partial results.
func searchFile(path, query string) []model.Message {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	projectName := decodeProjectName(filepath.Base(filepath.Dir(path)))

	var matches []model.Message
	for i, r := range lineindex.FindLineRanges(data) {
		line := r.Line(data)
		typ := extractTopLevelType(line)
		if typ != "user" && typ != "assistant" {
			continue
		}
		msg := ParseLine(i, line, false)
		if msg == nil || !search.MatchesMessage(msg, query) {
			continue
		}
		msg.ProjectName = projectName
		matches = append(matches, *msg)
	}
	return matches
}
