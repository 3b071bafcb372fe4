package opencode

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/pipeline"
	"github.com/theirongolddev/aislog/internal/search"
)

// Search scans every session in the store for messages matching the query.
// Sessions are scanned in parallel; the combined list is sorted newest-first
// and truncated to limit.
func (p *Provider) Search(query string, limit int) ([]model.Message, error) {
	sessionRoot := p.storageDir("session")
	entries, err := os.ReadDir(sessionRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	type target struct {
		virtualPath string
		projectName string
	}
	var targets []target

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projectID := entry.Name()
		if !isSafeStorageID(projectID) {
			continue
		}
		projectName := p.projectDisplayName(projectID)
		for _, path := range jsonFilesIn(filepath.Join(sessionRoot, projectID)) {
			stem := strings.TrimSuffix(filepath.Base(path), ".json")
			targets = append(targets, target{
				virtualPath: VirtualPathPrefix + projectID + "/" + stem,
				projectName: projectName,
			})
		}
	}

	results := pipeline.Map(targets, nil, func(t target) []model.Message {
		msgs, err := p.LoadAllMessages(t.virtualPath)
		if err != nil {
			return nil
		}
		var matches []model.Message
		for _, msg := range msgs {
			if !search.MatchesMessage(&msg, query) {
				continue
			}
			msg.ProjectName = t.projectName
			matches = append(matches, msg)
		}
		return matches
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
