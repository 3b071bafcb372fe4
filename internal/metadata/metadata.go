// Package metadata holds the most recent project scan behind a mutex so
// concurrent readers (TUI tabs, the watcher loop) see a consistent snapshot.
package metadata

import (
	"sync"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// Snapshot is the result of one full project scan.
type Snapshot struct {
	Projects     []model.Project
	ProjectCount int
	SessionCount int
	ScannedAt    time.Time
}

// Cache stores the last snapshot. Readers get a copy; the cached slice is
// never handed out.
type Cache struct {
	mu   sync.Mutex
	last *Snapshot
}

// Set replaces the cached snapshot with the given scan results.
func (c *Cache) Set(projects []model.Project) {
	snap := &Snapshot{
		Projects:     make([]model.Project, len(projects)),
		ProjectCount: len(projects),
		ScannedAt:    time.Now(),
	}
	copy(snap.Projects, projects)
	for _, p := range projects {
		snap.SessionCount += p.SessionCount
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
}

// Get returns a copy of the last snapshot, or ok=false when no scan has
// completed yet.
func (c *Cache) Get() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return Snapshot{}, false
	}
	out := *c.last
	out.Projects = make([]model.Project, len(c.last.Projects))
	copy(out.Projects, c.last.Projects)
	return out, true
}

// Clear drops the cached snapshot.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
}
