package opencode

import (
	"os"
	"path/filepath"
	"testing"
)

// storeFixture builds a minimal content-addressed store with one project,
// one session, and a short conversation.
func storeFixture(t *testing.T) *Provider {
	t.Helper()
	root := t.TempDir()

	writeDoc(t, root, "storage/project/proj_1.json",
		`{"id":"proj_1","worktree":"/home/alice/projects/demo"}`)
	writeDoc(t, root, "storage/session/proj_1/ses_1.json",
		`{"id":"ses_1","title":"Fix the parser","time":{"created":1709286000000,"updated":1709286120000}}`)

	writeDoc(t, root, "storage/message/ses_1/msg_1.json",
		`{"id":"msg_1","role":"user","time":{"created":1709286000000}}`)
	writeDoc(t, root, "storage/part/msg_1/prt_1.json",
		`{"type":"text","text":"please fix the parser"}`)

	writeDoc(t, root, "storage/message/ses_1/msg_2.json",
		`{"id":"msg_2","role":"assistant","parentID":"msg_1","modelID":"claude-sonnet-4-5","time":{"created":1709286060000}}`)
	writeDoc(t, root, "storage/part/msg_2/prt_1.json",
		`{"type":"tool","tool":"edit","callID":"call_1","state":{"status":"completed","input":{"filePath":"/repo/parser.go","oldString":"a","newString":"b"},"output":"edited"}}`)
	writeDoc(t, root, "storage/part/msg_2/prt_2.json",
		`{"type":"step-finish","cost":0.05,"tokens":{"input":200,"output":80,"cache":{"read":1000,"write":40}}}`)

	return New(root)
}

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanProjects(t *testing.T) {
	p := storeFixture(t)

	projects, err := p.ScanProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 {
		t.Fatalf("got %d projects, want 1", len(projects))
	}
	proj := projects[0]
	if proj.Name != "demo" {
		t.Errorf("Name = %q, want worktree base", proj.Name)
	}
	if proj.Path != "opencode://proj_1" {
		t.Errorf("Path = %q", proj.Path)
	}
	if proj.SessionCount != 1 {
		t.Errorf("SessionCount = %d", proj.SessionCount)
	}
	if proj.LastActivity == "" {
		t.Error("LastActivity empty, want session updated time")
	}
}

func TestScanProjectsMissingRoot(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "nope"))
	projects, err := p.ScanProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 0 {
		t.Errorf("got %d projects, want 0", len(projects))
	}
}

func TestLoadSessions(t *testing.T) {
	p := storeFixture(t)

	sessions, err := p.LoadSessions("opencode://proj_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.ActualSessionID != "ses_1" || s.SessionID != "opencode://proj_1/ses_1" {
		t.Errorf("ids = %q / %q", s.SessionID, s.ActualSessionID)
	}
	if s.FilePath != "opencode://proj_1/ses_1" {
		t.Errorf("FilePath = %q", s.FilePath)
	}
	if s.ProjectName != "demo" {
		t.Errorf("ProjectName = %q", s.ProjectName)
	}
	if s.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", s.MessageCount)
	}
	if s.Summary != "Fix the parser" {
		t.Errorf("Summary = %q, want session title", s.Summary)
	}
	if s.FirstMessageAt == "" || s.LastMessageAt <= s.FirstMessageAt {
		t.Errorf("time range = %q..%q", s.FirstMessageAt, s.LastMessageAt)
	}
}

func TestLoadSessionsRejectsUnsafeID(t *testing.T) {
	p := storeFixture(t)
	if _, err := p.LoadSessions("opencode://../escape"); err == nil {
		t.Error("expected error for traversal id")
	}
}

func TestLoadAllMessages(t *testing.T) {
	p := storeFixture(t)

	msgs, err := p.LoadAllMessages("opencode://proj_1/ses_1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	user := msgs[0]
	if user.Type != "user" || user.FirstText() != "please fix the parser" {
		t.Errorf("user message = %+v", user)
	}
	if user.Timestamp == "" {
		t.Error("user timestamp empty, want converted epoch ms")
	}

	asst := msgs[1]
	if asst.Type != "assistant" || asst.Model != "claude-sonnet-4-5" || asst.ParentUUID != "msg_1" {
		t.Errorf("assistant message = %+v", asst)
	}
	if !asst.Content.IsBlocks() || len(asst.Content.Blocks) != 2 {
		t.Fatalf("assistant blocks = %+v", asst.Content)
	}
	use := asst.Content.Blocks[0]
	if use.Name != "Edit" || use.Input["file_path"] != "/repo/parser.go" {
		t.Errorf("tool_use = %+v, want normalized name and keys", use)
	}
	if asst.Content.Blocks[1].Content != "edited" {
		t.Errorf("tool_result = %+v", asst.Content.Blocks[1])
	}

	// No message-level tokens, so step-finish counters apply.
	if asst.Usage == nil || *asst.Usage.InputTokens != 200 || *asst.Usage.CacheReadInputTokens != 1000 {
		t.Errorf("usage = %+v", asst.Usage)
	}
	if asst.CostUSD == nil || *asst.CostUSD != 0.05 {
		t.Errorf("cost = %v", asst.CostUSD)
	}
}

func TestLoadAllMessagesMessageTokensWin(t *testing.T) {
	p := storeFixture(t)
	writeDoc(t, p.Root, "storage/message/ses_1/msg_3.json",
		`{"id":"msg_3","role":"assistant","time":{"created":1709286120000},"tokens":{"input":7,"output":3},"cost":0.5}`)
	writeDoc(t, p.Root, "storage/part/msg_3/prt_1.json",
		`{"type":"step-finish","cost":9.9,"tokens":{"input":999,"output":999}}`)

	msgs, err := p.LoadAllMessages("opencode://proj_1/ses_1")
	if err != nil {
		t.Fatal(err)
	}
	last := msgs[len(msgs)-1]
	if *last.Usage.InputTokens != 7 || *last.Usage.OutputTokens != 3 {
		t.Errorf("usage = %+v, want message-level tokens preferred", last.Usage)
	}
	if *last.CostUSD != 0.5 {
		t.Errorf("cost = %v, want message-level cost preferred", *last.CostUSD)
	}
}

func TestLoadMessagesPagination(t *testing.T) {
	p := storeFixture(t)

	page, err := p.LoadMessages("opencode://proj_1/ses_1", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 2 || len(page.Items) != 1 || !page.HasMore {
		t.Fatalf("page = total %d, items %d, more %v", page.TotalCount, len(page.Items), page.HasMore)
	}
	if page.Items[0].UUID != "msg_2" {
		t.Errorf("newest window = %q, want msg_2", page.Items[0].UUID)
	}

	page, err = p.LoadMessages("opencode://proj_1/ses_1", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].UUID != "msg_1" || page.HasMore {
		t.Errorf("older window = %+v", page.Items)
	}
}

func TestLoadMessagesClampsNegativeBounds(t *testing.T) {
	p := storeFixture(t)

	// A negative offset reads as offset zero, the newest window.
	page, err := p.LoadMessages("opencode://proj_1/ses_1", -1, 50)
	if err != nil {
		t.Fatal(err)
	}
	if page.Offset != 0 || len(page.Items) != 2 || page.HasMore {
		t.Errorf("page = offset %d, items %d, more %v", page.Offset, len(page.Items), page.HasMore)
	}

	// A negative limit yields an empty page, not a panic.
	page, err = p.LoadMessages("opencode://proj_1/ses_1", 0, -5)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 || page.TotalCount != 2 {
		t.Errorf("page = total %d, items %d, want empty", page.TotalCount, len(page.Items))
	}
}

func TestLoadMessagesInvalidPath(t *testing.T) {
	p := storeFixture(t)
	for _, path := range []string{
		"opencode://proj_1",
		"opencode://proj_1/../x",
		"opencode://bad id/ses_1",
	} {
		if _, err := p.LoadMessages(path, 0, 10); err == nil {
			t.Errorf("LoadMessages(%q) succeeded, want error", path)
		}
	}
}

func TestSearchStore(t *testing.T) {
	p := storeFixture(t)

	results, err := p.Search("PLEASE FIX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].UUID != "msg_1" || results[0].ProjectName != "demo" {
		t.Errorf("result = %+v", results[0])
	}

	results, err = p.Search("no such phrase", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
