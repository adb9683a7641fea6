package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()

	r := &Report{
		SessionID:  "abc-123",
		Branch:     "feature/login",
		Model:      "claude-sonnet-4",
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 10, 2, 30, 0, time.UTC),
		Outcome:    "resolved",
		Files: []FileResult{
			{Path: "src/app.go", Regions: 2, Resolved: true},
			{Path: "go.mod", Regions: 1, Resolved: true},
		},
		ToolCalls: []ToolCall{
			{Tool: "read_file", Path: "src/app.go", Success: true},
			{Tool: "apply_patch", Path: "src/app.go", Success: false, Diagnostic: "patch did not apply"},
		},
		Tokens: TokenUsage{Input: 1500, Output: 600},
	}

	path, err := Write(dir, r)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(path) != "abc-123.yaml" {
		t.Errorf("report filename = %q, want abc-123.yaml", filepath.Base(path))
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.SessionID != r.SessionID {
		t.Errorf("SessionID = %q, want %q", got.SessionID, r.SessionID)
	}
	if got.Outcome != "resolved" {
		t.Errorf("Outcome = %q", got.Outcome)
	}
	if len(got.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(got.Files))
	}
	if got.Files[0].Path != "src/app.go" || !got.Files[0].Resolved {
		t.Errorf("Files[0] = %+v", got.Files[0])
	}
	if len(got.ToolCalls) != 2 {
		t.Fatalf("len(ToolCalls) = %d, want 2", len(got.ToolCalls))
	}
	if got.ToolCalls[1].Diagnostic != "patch did not apply" {
		t.Errorf("Diagnostic = %q", got.ToolCalls[1].Diagnostic)
	}
	if got.Tokens.Input != 1500 || got.Tokens.Output != 600 {
		t.Errorf("Tokens = %+v", got.Tokens)
	}
}

func TestWrite_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".mergehand", "reports")

	r := &Report{SessionID: "s1", Outcome: "failed"}
	if _, err := Write(dir, r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "s1.yaml")); err != nil {
		t.Errorf("report not written: %v", err)
	}
}

func TestWrite_OmitsEmptyToolCalls(t *testing.T) {
	dir := t.TempDir()

	r := &Report{SessionID: "s2", Outcome: "resolved"}
	path, err := Write(dir, r)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if strings.Contains(string(data), "tool_calls") {
		t.Error("empty tool_calls should be omitted from YAML")
	}
}

func TestDefaultDir(t *testing.T) {
	got := DefaultDir("/repo")
	want := filepath.Join("/repo", ".mergehand", "reports")
	if got != want {
		t.Errorf("DefaultDir = %q, want %q", got, want)
	}
}
