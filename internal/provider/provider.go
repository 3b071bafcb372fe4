// Package provider defines the capability surface each log backend exposes
// and locates provider installations on disk.
package provider

import (
	"os"
	"path/filepath"

	"github.com/theirongolddev/aislog/internal/model"
)

// Provider is the closed capability surface over one backend's on-disk logs.
// The provider set is fixed (Claude, Codex, OpenCode); callers that need
// provider-specific behavior switch on ID.
type Provider interface {
	ID() model.ProviderID

	// ScanProjects enumerates the provider's projects. An absent root
	// directory yields zero projects, not an error.
	ScanProjects() ([]model.Project, error)

	// LoadSessions lists the sessions grouped under one project. The path may
	// be a filesystem path or the provider's virtual form.
	LoadSessions(projectPath string) ([]model.Session, error)

	// LoadMessages returns one page of a session's messages in chat order.
	// Tool results are already folded into their invoking messages.
	LoadMessages(sessionPath string, offset, limit int) (*model.PaginatedMessages, error)

	// LoadAllMessages returns every message of a session, unmerged, in file
	// order. Statistics run over this form.
	LoadAllMessages(sessionPath string) ([]model.Message, error)

	// Search scans all of the provider's sessions for messages matching the
	// query, up to limit results.
	Search(query string, limit int) ([]model.Message, error)
}

// ClaudeRoot returns the Claude data directory (~/.claude).
func ClaudeRoot() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude")
}

// CodexRoot returns the Codex data directory ($CODEX_HOME or ~/.codex).
func CodexRoot() string {
	if env := os.Getenv("CODEX_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".codex")
}

// OpenCodeRoot returns the OpenCode data directory: $OPENCODE_HOME,
// $XDG_DATA_HOME/opencode, or ~/.local/share/opencode.
func OpenCodeRoot() string {
	if env := os.Getenv("OPENCODE_HOME"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "opencode")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "opencode")
}

// Detect probes one provider's installation.
func Detect(id model.ProviderID) model.ProviderInfo {
	info := model.ProviderInfo{
		ID:          id,
		DisplayName: id.DisplayName(),
	}
	switch id {
	case model.ProviderClaude:
		info.BasePath = ClaudeRoot()
		info.IsAvailable = dirExists(filepath.Join(info.BasePath, "projects"))
	case model.ProviderCodex:
		info.BasePath = CodexRoot()
		info.IsAvailable = dirExists(filepath.Join(info.BasePath, "sessions"))
	case model.ProviderOpenCode:
		info.BasePath = OpenCodeRoot()
		info.IsAvailable = dirExists(filepath.Join(info.BasePath, "storage"))
	}
	return info
}

// DetectAll probes every supported provider.
func DetectAll() []model.ProviderInfo {
	ids := model.AllProviders()
	infos := make([]model.ProviderInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, Detect(id))
	}
	return infos
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
