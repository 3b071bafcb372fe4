// Package watch emits change notifications for Claude session logs. A change
// to a .jsonl file is reported as the owning (project dir, session file)
// pair, derived from the path alone without parsing content.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Event identifies the project and session touched by one file change.
type Event struct {
	ProjectPath string
	SessionPath string
}

// Watcher follows the Claude projects tree. Project subdirectories created
// while running are picked up automatically.
type Watcher struct {
	projectsDir string
	fsw         *fsnotify.Watcher
	events      chan Event
}

// New validates the projects directory and registers it plus every existing
// project subdirectory. The directory must not be a symlink and must resolve
// to a path under the base directory.
func New(claudeRoot string) (*Watcher, error) {
	projectsDir := filepath.Join(claudeRoot, "projects")

	info, err := os.Lstat(projectsDir)
	if err != nil {
		return nil, fmt.Errorf("projects directory: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("projects directory %s is a symlink", projectsDir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", projectsDir)
	}

	resolvedRoot, err := filepath.EvalSymlinks(claudeRoot)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(projectsDir)
	if err != nil {
		return nil, err
	}
	if resolved != resolvedRoot && !strings.HasPrefix(resolved, resolvedRoot+string(filepath.Separator)) {
		return nil, fmt.Errorf("projects directory %s resolves outside %s", projectsDir, claudeRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(projectsDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	entries, _ := os.ReadDir(projectsDir)
	for _, entry := range entries {
		if entry.IsDir() {
			_ = fsw.Add(filepath.Join(projectsDir, entry.Name()))
		}
	}

	return &Watcher{
		projectsDir: projectsDir,
		fsw:         fsw,
		events:      make(chan Event, 64),
	}, nil
}

// Events returns the change channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run pumps filesystem notifications until ctx is canceled. New project
// directories are added to the watch set; .jsonl changes become Events.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return w.fsw.Close()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return fmt.Errorf("watching %s: %w", w.projectsDir, err)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			_ = w.fsw.Add(ev.Name)
			return
		}
	}

	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
		return
	}
	if filepath.Ext(ev.Name) != ".jsonl" {
		return
	}

	projectPath, sessionPath, ok := ExtractPaths(ev.Name)
	if !ok {
		return
	}
	select {
	case w.events <- Event{ProjectPath: projectPath, SessionPath: sessionPath}:
	case <-ctx.Done():
	}
}

// ExtractPaths derives the project directory and session file from a changed
// path. The project is the first directory below the "projects" component;
// a path with no such component, or a file directly under projects/, yields
// ok=false.
func ExtractPaths(path string) (projectPath, sessionPath string, ok bool) {
	clean := filepath.Clean(path)
	parts := strings.Split(clean, string(filepath.Separator))

	idx := -1
	for i, part := range parts {
		if part == "projects" {
			idx = i
		}
	}
	// The file must sit at least one level below the project directory.
	if idx < 0 || idx+2 >= len(parts) {
		return "", "", false
	}

	return strings.Join(parts[:idx+2], string(filepath.Separator)), clean, true
}
