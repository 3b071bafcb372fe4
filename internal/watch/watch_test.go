package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExtractPaths(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantProject string
		wantOK      bool
	}{
		{
			name:        "session file",
			path:        "/home/alice/.claude/projects/-home-alice-demo/abc.jsonl",
			wantProject: "/home/alice/.claude/projects/-home-alice-demo",
			wantOK:      true,
		},
		{
			name:        "nested subfolder",
			path:        "/home/alice/.claude/projects/-home-alice-demo/sub/abc.jsonl",
			wantProject: "/home/alice/.claude/projects/-home-alice-demo",
			wantOK:      true,
		},
		{
			name:   "file directly under projects",
			path:   "/home/alice/.claude/projects/abc.jsonl",
			wantOK: false,
		},
		{
			name:   "no projects component",
			path:   "/tmp/other/abc.jsonl",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, session, ok := ExtractPaths(filepath.FromSlash(tt.path))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if project != filepath.FromSlash(tt.wantProject) {
				t.Errorf("project = %q, want %q", project, tt.wantProject)
			}
			if session != filepath.Clean(filepath.FromSlash(tt.path)) {
				t.Errorf("session = %q", session)
			}
		})
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing projects directory")
	}
}

func TestNewRejectsSymlink(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(t.TempDir(), "real-projects")
	if err := os.MkdirAll(real, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(real, filepath.Join(root, "projects")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := New(root); err == nil {
		t.Error("expected error for symlinked projects directory")
	}
}

func TestWatcherEmitsSessionEvents(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "projects", "-home-alice-demo")
	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		t.Fatal(err)
	}

	w, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	sessionFile := filepath.Join(projectDir, "abc.jsonl")
	if err := os.WriteFile(sessionFile, []byte(`{"type":"user"}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.ProjectPath != projectDir {
			t.Errorf("ProjectPath = %q, want %q", ev.ProjectPath, projectDir)
		}
		if ev.SessionPath != sessionFile {
			t.Errorf("SessionPath = %q, want %q", ev.SessionPath, sessionFile)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event within timeout")
	}

	cancel()
	<-done
}

func TestWatcherIgnoresNonSessionFiles(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "projects", "-home-alice-demo")
	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		t.Fatal(err)
	}

	w, err := New(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}
