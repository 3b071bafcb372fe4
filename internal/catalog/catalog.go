// Package catalog dispatches cross-provider operations over the configured
// log backends and assembles the session data the statistics layer reduces.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/theirongolddev/aislog/internal/metadata"
	"github.com/theirongolddev/aislog/internal/model"
	"github.com/theirongolddev/aislog/internal/pipeline"
	"github.com/theirongolddev/aislog/internal/provider"
	"github.com/theirongolddev/aislog/internal/provider/claude"
	"github.com/theirongolddev/aislog/internal/provider/codex"
	"github.com/theirongolddev/aislog/internal/provider/opencode"
	"github.com/theirongolddev/aislog/internal/search"
	"github.com/theirongolddev/aislog/internal/stats"
	"github.com/theirongolddev/aislog/internal/store"
)

// Roots are the provider data directories. Zero values fall back to the
// default install locations.
type Roots struct {
	Claude   string
	Codex    string
	OpenCode string
}

// Catalog routes operations to the right provider and merges the results
// where an operation spans all of them.
type Catalog struct {
	providers map[model.ProviderID]provider.Provider
	meta      metadata.Cache
}

// New builds a catalog over the three supported providers.
func New(roots Roots) *Catalog {
	if roots.Claude == "" {
		roots.Claude = provider.ClaudeRoot()
	}
	if roots.Codex == "" {
		roots.Codex = provider.CodexRoot()
	}
	if roots.OpenCode == "" {
		roots.OpenCode = provider.OpenCodeRoot()
	}
	return &Catalog{
		providers: map[model.ProviderID]provider.Provider{
			model.ProviderClaude:   claude.New(roots.Claude),
			model.ProviderCodex:    codex.New(roots.Codex),
			model.ProviderOpenCode: opencode.New(roots.OpenCode),
		},
	}
}

// Provider returns the backend registered for id.
func (c *Catalog) Provider(id model.ProviderID) (provider.Provider, error) {
	p, ok := c.providers[id]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", id)
	}
	return p, nil
}

// ScanAllProjects enumerates projects across every provider, newest activity
// first. A provider whose root is absent contributes nothing; a provider that
// fails outright aborts the scan.
func (c *Catalog) ScanAllProjects() ([]model.Project, error) {
	var all []model.Project
	for _, id := range model.AllProviders() {
		projects, err := c.providers[id].ScanProjects()
		if err != nil {
			return nil, fmt.Errorf("scanning %s projects: %w", id, err)
		}
		all = append(all, projects...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].LastActivity > all[j].LastActivity
	})
	c.meta.Set(all)
	return all, nil
}

// LastScan returns a copy of the most recent ScanAllProjects result, or
// ok=false when no scan has completed yet.
func (c *Catalog) LastScan() (metadata.Snapshot, bool) {
	return c.meta.Get()
}

// LoadSessions lists one project's sessions via the owning provider.
func (c *Catalog) LoadSessions(id model.ProviderID, projectPath string) ([]model.Session, error) {
	p, err := c.Provider(id)
	if err != nil {
		return nil, err
	}
	return p.LoadSessions(projectPath)
}

// LoadMessages returns one page of a session via the owning provider.
func (c *Catalog) LoadMessages(id model.ProviderID, sessionPath string, offset, limit int) (*model.PaginatedMessages, error) {
	p, err := c.Provider(id)
	if err != nil {
		return nil, err
	}
	return p.LoadMessages(sessionPath, offset, limit)
}

// SearchAll validates the filters, runs every provider's search up to limit
// results each, and combines the sets newest-first with one final truncation.
func (c *Catalog) SearchAll(query string, filters *search.Filters, limit int) ([]model.Message, error) {
	if filters != nil {
		if err := filters.Validate(); err != nil {
			return nil, err
		}
	}

	sets := make([][]model.Message, 0, len(c.providers))
	for _, id := range model.AllProviders() {
		msgs, err := c.providers[id].Search(query, limit)
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", id, err)
		}
		sets = append(sets, msgs)
	}
	return search.Combine(sets, filters, limit), nil
}

// ProjectSessions loads one project's sessions with their full message lists,
// in parallel across session files. Sessions whose files fail to load are
// skipped so one corrupt file cannot sink a stats run.
func (c *Catalog) ProjectSessions(id model.ProviderID, projectPath string) ([]stats.SessionData, error) {
	p, err := c.Provider(id)
	if err != nil {
		return nil, err
	}
	sessions, err := p.LoadSessions(projectPath)
	if err != nil {
		return nil, err
	}
	return c.loadSessionData(p, sessions), nil
}

func (c *Catalog) loadSessionData(p provider.Provider, sessions []model.Session) []stats.SessionData {
	loaded := pipeline.Map(sessions, nil, func(s model.Session) *stats.SessionData {
		msgs, err := p.LoadAllMessages(s.FilePath)
		if err != nil {
			return nil
		}
		return &stats.SessionData{Session: s, Messages: msgs}
	})

	out := make([]stats.SessionData, 0, len(loaded))
	for _, sd := range loaded {
		if sd != nil {
			out = append(out, *sd)
		}
	}
	return out
}

// ProjectAccums builds per-session accumulators for one project. With a
// non-nil cache, files whose mtime and size are unchanged restore from the
// cache instead of being re-parsed; virtual session paths always re-parse.
func (c *Catalog) ProjectAccums(id model.ProviderID, projectPath string, policy stats.Policy, cache *store.Cache, breakThreshold time.Duration) ([]stats.SessionAccum, error) {
	p, err := c.Provider(id)
	if err != nil {
		return nil, err
	}
	sessions, err := p.LoadSessions(projectPath)
	if err != nil {
		return nil, err
	}
	return c.accumulateSessions(p, sessions, policy, cache, breakThreshold), nil
}

func (c *Catalog) accumulateSessions(p provider.Provider, sessions []model.Session, policy stats.Policy, cache *store.Cache, breakThreshold time.Duration) []stats.SessionAccum {
	accs := pipeline.Map(sessions, nil, func(s model.Session) *stats.SessionAccum {
		acc := c.sessionAccum(p, s, policy, cache, breakThreshold)
		if acc == nil {
			return nil
		}
		return &stats.SessionAccum{Session: s, Acc: acc}
	})

	out := make([]stats.SessionAccum, 0, len(accs))
	for _, sa := range accs {
		if sa != nil {
			out = append(out, *sa)
		}
	}
	return out
}

func (c *Catalog) sessionAccum(p provider.Provider, s model.Session, policy stats.Policy, cache *store.Cache, breakThreshold time.Duration) *stats.Accumulator {
	var mtimeNs, sizeBytes int64
	statted := false
	if cache != nil {
		if info, err := os.Stat(s.FilePath); err == nil {
			mtimeNs = info.ModTime().UnixNano()
			sizeBytes = info.Size()
			statted = true
			if fs, hit, err := cache.Get(s.FilePath, policy.String(), mtimeNs, sizeBytes); err == nil && hit {
				return stats.FromSnapshot(*fs)
			}
		}
	}

	msgs, err := p.LoadAllMessages(s.FilePath)
	if err != nil {
		return nil
	}
	acc := stats.Accumulate(msgs, policy)

	if cache != nil && statted {
		_ = cache.Put(store.Entry{
			FilePath:    s.FilePath,
			Policy:      policy.String(),
			SessionID:   s.SessionID,
			ProjectName: s.ProjectName,
			Provider:    string(p.ID()),
			MtimeNs:     mtimeNs,
			SizeBytes:   sizeBytes,
			Stats:       acc.Snapshot(breakThreshold),
		})
	}
	return acc
}

// GlobalAccums assembles every provider's projects as pre-built accumulators,
// the cached input shape of the global statistics reduce.
func (c *Catalog) GlobalAccums(policy stats.Policy, cache *store.Cache, breakThreshold time.Duration) ([]stats.ProjectAccum, error) {
	var all []stats.ProjectAccum
	for _, id := range model.AllProviders() {
		p := c.providers[id]
		projects, err := p.ScanProjects()
		if err != nil {
			return nil, fmt.Errorf("scanning %s projects: %w", id, err)
		}
		for _, proj := range projects {
			sessions, err := p.LoadSessions(proj.Path)
			if err != nil {
				continue
			}
			all = append(all, stats.ProjectAccum{
				Project:  proj,
				Sessions: c.accumulateSessions(p, sessions, policy, cache, breakThreshold),
			})
		}
	}
	return all, nil
}

// GlobalData assembles every provider's projects with their full session
// data, the input shape of the global statistics reduce.
func (c *Catalog) GlobalData() ([]stats.ProjectData, error) {
	var all []stats.ProjectData
	for _, id := range model.AllProviders() {
		p := c.providers[id]
		projects, err := p.ScanProjects()
		if err != nil {
			return nil, fmt.Errorf("scanning %s projects: %w", id, err)
		}
		for _, proj := range projects {
			sessions, err := p.LoadSessions(proj.Path)
			if err != nil {
				continue
			}
			all = append(all, stats.ProjectData{
				Project:  proj,
				Sessions: c.loadSessionData(p, sessions),
			})
		}
	}
	return all, nil
}
