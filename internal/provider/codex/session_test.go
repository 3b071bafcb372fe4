package codex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRollout(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func demoRolloutLines(sessionID, cwd string) []string {
	return []string{
		`{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"` + sessionID + `","cwd":"` + cwd + `"}}`,
		`{"timestamp":"2024-03-01T10:00:01Z","type":"turn_context","payload":{"model":"gpt-5-codex"}}`,
		`{"timestamp":"2024-03-01T10:00:02Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"refactor the parser"}]}}`,
		`{"timestamp":"2024-03-01T10:00:05Z","type":"response_item","payload":{"type":"local_shell_call","call_id":"call_1","action":{"command":["go","vet"]}}}`,
		`{"timestamp":"2024-03-01T10:00:06Z","type":"response_item","payload":{"type":"function_call_output","call_id":"call_1","output":"ok"}}`,
		`{"timestamp":"2024-03-01T10:00:09Z","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"done"}]}}`,
	}
}

func TestExtractSessionInfo(t *testing.T) {
	root := t.TempDir()
	path := writeRollout(t, filepath.Join(root, "sessions", "2024", "03", "01"),
		"rollout-2024-03-01-sess-1.jsonl",
		demoRolloutLines("sess-1", "/home/alice/projects/demo")...)

	info := extractSessionInfo(path)
	if info == nil {
		t.Fatal("expected session info")
	}
	if info.cwd != "/home/alice/projects/demo" {
		t.Errorf("cwd = %q", info.cwd)
	}
	s := info.session
	if s.ActualSessionID != "sess-1" {
		t.Errorf("ActualSessionID = %q", s.ActualSessionID)
	}
	// Shell calls and their outputs count as messages; meta lines do not.
	if s.MessageCount != 4 {
		t.Errorf("MessageCount = %d, want 4", s.MessageCount)
	}
	if !s.HasToolUse {
		t.Error("HasToolUse = false")
	}
	if s.Summary != "refactor the parser" {
		t.Errorf("Summary = %q", s.Summary)
	}
	if s.FirstMessageAt != "2024-03-01T10:00:02Z" || s.LastMessageAt != "2024-03-01T10:00:09Z" {
		t.Errorf("time range = %q..%q", s.FirstMessageAt, s.LastMessageAt)
	}
}

func TestExtractSessionInfoMtimeFallback(t *testing.T) {
	root := t.TempDir()
	path := writeRollout(t, filepath.Join(root, "sessions"),
		"rollout-empty.jsonl",
		`{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"sess-2","cwd":"/w"}}`)

	info := extractSessionInfo(path)
	if info == nil {
		t.Fatal("expected session info")
	}
	if info.session.MessageCount != 0 {
		t.Errorf("MessageCount = %d, want 0", info.session.MessageCount)
	}
	if info.session.LastMessageAt == "" {
		t.Error("LastMessageAt empty, want file mtime fallback")
	}
}

func TestScanProjectsGroupsByCwd(t *testing.T) {
	root := t.TempDir()
	sessions := filepath.Join(root, "sessions")
	writeRollout(t, sessions, "rollout-a.jsonl", demoRolloutLines("s-a", "/home/alice/projects/demo")...)
	writeRollout(t, sessions, "rollout-b.jsonl", demoRolloutLines("s-b", "/home/alice/projects/demo")...)
	writeRollout(t, sessions, "rollout-c.jsonl", demoRolloutLines("s-c", "/home/alice/projects/other")...)
	writeRollout(t, sessions, "rollout-d.jsonl",
		`{"timestamp":"2024-03-01T10:00:00Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"orphan"}]}}`)
	// Non-rollout files are ignored.
	writeRollout(t, sessions, "notes.jsonl", `{"type":"session_meta"}`)

	p := New(root)
	projects, err := p.ScanProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 3 {
		t.Fatalf("got %d projects, want 3", len(projects))
	}

	byName := make(map[string]int)
	for _, proj := range projects {
		byName[proj.Name] = proj.SessionCount
		if proj.Name == "demo" && proj.Path != "codex:///home/alice/projects/demo" {
			t.Errorf("demo path = %q", proj.Path)
		}
	}
	if byName["demo"] != 2 || byName["other"] != 1 || byName["unknown"] != 1 {
		t.Errorf("session counts = %v", byName)
	}
}

func TestLoadSessionsFiltersByCwd(t *testing.T) {
	root := t.TempDir()
	sessions := filepath.Join(root, "sessions")
	writeRollout(t, sessions, "rollout-a.jsonl", demoRolloutLines("s-a", "/home/alice/projects/demo")...)
	writeRollout(t, sessions, "rollout-c.jsonl", demoRolloutLines("s-c", "/home/alice/projects/other")...)

	p := New(root)
	got, err := p.LoadSessions("codex:///home/alice/projects/demo")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sessions, want 1", len(got))
	}
	if got[0].ActualSessionID != "s-a" || got[0].ProjectName != "demo" {
		t.Errorf("session = %+v", got[0])
	}

	// Bare directory form works too.
	got, err = p.LoadSessions("/home/alice/projects/other")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ActualSessionID != "s-c" {
		t.Errorf("bare path lookup = %+v", got)
	}
}

func TestRolloutFilesIncludesArchived(t *testing.T) {
	root := t.TempDir()
	writeRollout(t, filepath.Join(root, "sessions"), "rollout-live.jsonl",
		demoRolloutLines("s-live", "/w")...)
	writeRollout(t, filepath.Join(root, "archived_sessions"), "rollout-old.jsonl",
		demoRolloutLines("s-old", "/w")...)

	p := New(root)
	files, err := p.RolloutFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want live and archived", len(files))
	}
}

func TestRolloutFilesMissingRoot(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "nope"))
	files, err := p.RolloutFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("got %d files, want 0", len(files))
	}
}

func TestLoadMessagesPagination(t *testing.T) {
	root := t.TempDir()
	lines := []string{
		`{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"s","cwd":"/w"}}`,
	}
	for i := 1; i <= 5; i++ {
		lines = append(lines,
			`{"timestamp":"2024-03-01T10:00:0`+string(rune('0'+i))+`Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"m`+string(rune('0'+i))+`"}]}}`)
	}
	path := writeRollout(t, filepath.Join(root, "sessions"), "rollout-p.jsonl", lines...)

	p := New(root)

	page, err := p.LoadMessages(path, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 5 || len(page.Items) != 2 || !page.HasMore {
		t.Fatalf("page = total %d, items %d, more %v", page.TotalCount, len(page.Items), page.HasMore)
	}
	if page.Items[0].FirstText() != "m4" || page.Items[1].FirstText() != "m5" {
		t.Errorf("newest window = %q, %q", page.Items[0].FirstText(), page.Items[1].FirstText())
	}

	page, err = p.LoadMessages(path, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].FirstText() != "m1" || page.HasMore {
		t.Errorf("oldest window = %+v", page.Items)
	}
}

func TestLoadMessagesClampsNegativeBounds(t *testing.T) {
	root := t.TempDir()
	path := writeRollout(t, filepath.Join(root, "sessions"), "rollout-n.jsonl",
		`{"timestamp":"2024-03-01T10:00:00Z","type":"session_meta","payload":{"id":"s","cwd":"/w"}}`,
		`{"timestamp":"2024-03-01T10:00:01Z","type":"response_item","payload":{"type":"message","role":"user","content":[{"type":"input_text","text":"m1"}]}}`,
		`{"timestamp":"2024-03-01T10:00:02Z","type":"response_item","payload":{"type":"message","role":"assistant","content":[{"type":"output_text","text":"m2"}]}}`,
	)

	p := New(root)

	// A negative offset reads as offset zero, the newest window.
	page, err := p.LoadMessages(path, -1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if page.Offset != 0 || len(page.Items) != 2 || page.HasMore {
		t.Errorf("page = offset %d, items %d, more %v", page.Offset, len(page.Items), page.HasMore)
	}

	// A negative limit yields an empty page, not a panic.
	page, err = p.LoadMessages(path, 0, -5)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 || page.TotalCount != 2 {
		t.Errorf("page = total %d, items %d, want empty", page.TotalCount, len(page.Items))
	}
}

func TestLoadMessagesMergesToolResults(t *testing.T) {
	root := t.TempDir()
	path := writeRollout(t, filepath.Join(root, "sessions"), "rollout-m.jsonl",
		demoRolloutLines("s", "/w")...)

	p := New(root)
	page, err := p.LoadMessages(path, 0, 10)
	if err != nil {
		t.Fatal(err)
	}

	// The shell call output folds into the call, so the standalone
	// tool_result message disappears from the page.
	for _, m := range page.Items {
		if m.Content == nil || !m.Content.IsBlocks() {
			continue
		}
		for _, b := range m.Content.Blocks {
			if b.Type == "tool_result" && m.Type == "user" && len(m.Content.Blocks) == 1 {
				t.Errorf("unmerged tool result message: %+v", m)
			}
		}
	}
	var sawMergedCall bool
	for _, m := range page.Items {
		if m.Content == nil || !m.Content.IsBlocks() {
			continue
		}
		var hasUse, hasResult bool
		for _, b := range m.Content.Blocks {
			switch b.Type {
			case "tool_use":
				hasUse = true
			case "tool_result":
				hasResult = true
			}
		}
		if hasUse && hasResult {
			sawMergedCall = true
		}
	}
	if !sawMergedCall {
		t.Error("no message carries both the call and its result")
	}
}

func TestSearch(t *testing.T) {
	root := t.TempDir()
	sessions := filepath.Join(root, "sessions")
	writeRollout(t, sessions, "rollout-a.jsonl", demoRolloutLines("s-a", "/home/alice/projects/demo")...)
	writeRollout(t, sessions, "rollout-b.jsonl", demoRolloutLines("s-b", "/home/alice/projects/other")...)

	p := New(root)
	results, err := p.Search("REFACTOR", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want case-insensitive match in both files", len(results))
	}
	names := map[string]bool{}
	for _, m := range results {
		names[m.ProjectName] = true
	}
	if !names["demo"] || !names["other"] {
		t.Errorf("project names = %v", names)
	}

	results, err = p.Search("refactor", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("limit not applied: %d results", len(results))
	}
}
