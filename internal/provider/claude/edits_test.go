package claude

import (
	"testing"
)

func TestRecentEditsSingleEdit(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		`{"type":"user","uuid":"u1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"filePath":"/repo/main.go","oldString":"foo","newString":"bar","originalFile":"a foo b\n"}}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalEdits != 1 || result.UniqueFiles != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", result.TotalEdits, result.UniqueFiles)
	}
	e := result.Files[0]
	if e.Operation != "edit" || e.Content != "a bar b\n" {
		t.Errorf("edit = %q %q, want reconstructed content", e.Operation, e.Content)
	}
	if e.OriginalContent != "a foo b\n" {
		t.Errorf("OriginalContent = %q", e.OriginalContent)
	}
	if e.LinesAdded != 1 || e.LinesRemoved != 1 {
		t.Errorf("lines = +%d/-%d, want +1/-1", e.LinesAdded, e.LinesRemoved)
	}
	if e.SessionID != "s1" || e.Cwd != "/repo" {
		t.Errorf("metadata = %q %q", e.SessionID, e.Cwd)
	}
	if result.ProjectCwd != "/repo" {
		t.Errorf("ProjectCwd = %q", result.ProjectCwd)
	}
}

func TestRecentEditsMultiEditAppliesInOrder(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		`{"type":"user","uuid":"u1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"filePath":"/repo/p.go","originalFile":"one\ntwo\n","edits":[{"old_string":"one","new_string":"ONE"},{"old_string":"two","new_string":"TWO\nthree"}]}}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	e := result.Files[0]
	if e.Content != "ONE\nTWO\nthree\n" {
		t.Errorf("Content = %q, want edits applied sequentially", e.Content)
	}
	if e.LinesAdded != 3 || e.LinesRemoved != 2 {
		t.Errorf("lines = +%d/-%d, want +3/-2", e.LinesAdded, e.LinesRemoved)
	}
}

func TestRecentEditsWriteShapes(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		`{"type":"user","uuid":"u1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"type":"create","filePath":"/repo/new.go","content":"package main\n"}}`,
		`{"type":"assistant","uuid":"a1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:01:00Z","toolUse":{"name":"Write","input":{"file_path":"/repo/other.go","content":"package other\nvar x int\n"}}}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.UniqueFiles != 2 {
		t.Fatalf("UniqueFiles = %d, want 2", result.UniqueFiles)
	}
	for _, e := range result.Files {
		if e.Operation != "write" {
			t.Errorf("%s operation = %q, want write", e.FilePath, e.Operation)
		}
		if e.OriginalContent != "" {
			t.Errorf("%s carries original content %q", e.FilePath, e.OriginalContent)
		}
	}
	if result.Files[0].FilePath != "/repo/other.go" {
		t.Errorf("Files[0] = %q, want newest first", result.Files[0].FilePath)
	}
	if result.Files[0].LinesAdded != 2 || result.Files[1].LinesAdded != 1 {
		t.Errorf("lines added = %d/%d, want 2/1",
			result.Files[0].LinesAdded, result.Files[1].LinesAdded)
	}
}

func TestRecentEditsLatestPerFileWins(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		`{"type":"user","uuid":"u1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"type":"create","filePath":"/repo/main.go","content":"v1\n"}}`,
		`{"type":"user","uuid":"u2","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T11:00:00Z","toolUseResult":{"filePath":"/repo/main.go","oldString":"v1","newString":"v2","originalFile":"v1\n"}}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalEdits != 2 || result.UniqueFiles != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", result.TotalEdits, result.UniqueFiles)
	}
	if got := result.Files[0].Content; got != "v2\n" {
		t.Errorf("Content = %q, want the newest state", got)
	}
}

func TestRecentEditsFiltersToDominantCwd(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		`{"type":"user","uuid":"u1","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"type":"create","filePath":"/repo/in.go","content":"x\n"}}`,
		`{"type":"user","uuid":"u2","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:01:00Z","toolUseResult":{"type":"create","filePath":"/elsewhere/out.go","content":"y\n"}}`,
		`{"type":"user","uuid":"u3","sessionId":"s1","cwd":"/repo","timestamp":"2024-01-01T10:02:00Z","message":{"role":"user","content":"hi"}}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.ProjectCwd != "/repo" {
		t.Fatalf("ProjectCwd = %q, want /repo", result.ProjectCwd)
	}
	if result.TotalEdits != 1 || result.UniqueFiles != 1 {
		t.Fatalf("counts = %d/%d, want the outside file filtered", result.TotalEdits, result.UniqueFiles)
	}
	if result.Files[0].FilePath != "/repo/in.go" {
		t.Errorf("file = %q", result.Files[0].FilePath)
	}
}

func TestRecentEditsSkipsUnreconstructable(t *testing.T) {
	dir := projectDir(t)
	writeSessionFile(t, dir, "a.jsonl",
		// Single edit without originalFile cannot rebuild the file.
		`{"type":"user","uuid":"u1","sessionId":"s1","timestamp":"2024-01-01T10:00:00Z","toolUseResult":{"filePath":"/repo/a.go","oldString":"x","newString":"y"}}`,
		// Read results are plain strings and carry no edit.
		`{"type":"user","uuid":"u2","sessionId":"s1","timestamp":"2024-01-01T10:01:00Z","toolUseResult":"file contents here"}`,
	)

	p := New(t.TempDir())
	result, err := p.RecentEdits(dir)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalEdits != 0 || len(result.Files) != 0 {
		t.Errorf("result = %+v, want no edits", result)
	}
}

func TestRecentEditsMissingProject(t *testing.T) {
	p := New(t.TempDir())
	result, err := p.RecentEdits(t.TempDir() + "/none")
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalEdits != 0 || result.UniqueFiles != 0 {
		t.Errorf("result = %+v, want empty", result)
	}
}
