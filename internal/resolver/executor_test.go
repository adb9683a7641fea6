package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/calebsw/mergehand/internal/fileops"
	"github.com/calebsw/mergehand/internal/protect"
)

// fakeOps is an in-memory FileOps implementation for executor tests.
type fakeOps struct {
	files   map[string]string
	head    map[string]string
	deleted []string
	patched []string
}

func newFakeOps() *fakeOps {
	return &fakeOps{
		files: make(map[string]string),
		head:  make(map[string]string),
	}
}

func (f *fakeOps) ReadCurrentFile(path string) (string, fileops.Result) {
	content, ok := f.files[path]
	if !ok {
		return "", fileops.Result{Diagnostic: "read " + path + ": no such file"}
	}
	return content, fileops.Result{Success: true}
}

func (f *fakeOps) ReadHeadFile(path string) (string, fileops.Result) {
	content, ok := f.head[path]
	if !ok {
		return "", fileops.Result{Diagnostic: "read " + path + " from HEAD: not found"}
	}
	return content, fileops.Result{Success: true}
}

func (f *fakeOps) DeleteFile(path string) fileops.Result {
	if _, ok := f.files[path]; !ok {
		return fileops.Result{Diagnostic: "path " + path + " is not a file or does not exist"}
	}
	delete(f.files, path)
	f.deleted = append(f.deleted, path)
	return fileops.Result{Success: true}
}

func (f *fakeOps) ReplaceInFile(path, original, replacement string) fileops.Result {
	content, ok := f.files[path]
	if !ok {
		return fileops.Result{Diagnostic: "replace in " + path + ": no such file"}
	}
	if !strings.Contains(content, original) {
		return fileops.Result{} // clean no-op
	}
	f.files[path] = strings.ReplaceAll(content, original, replacement)
	return fileops.Result{Success: true}
}

func (f *fakeOps) ApplyPatch(path, patch string) fileops.Result {
	if strings.Contains(patch, "bad") {
		return fileops.Result{Diagnostic: "git apply failed"}
	}
	f.patched = append(f.patched, path)
	return fileops.Result{Success: true}
}

func mustInput(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	return data
}

func TestExecute_ReadFile(t *testing.T) {
	ops := newFakeOps()
	ops.files["src/app.go"] = "package app\n"
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolReadFile,
		mustInput(t, map[string]string{"path": "src/app.go"}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if result.Content != "package app\n" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestExecute_ReadFile_Missing(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, nil)

	result := e.Execute(context.Background(), toolReadFile,
		mustInput(t, map[string]string{"path": "missing.go"}))
	if !result.IsError {
		t.Error("expected error for missing file")
	}
}

func TestExecute_ReadHeadFile(t *testing.T) {
	ops := newFakeOps()
	ops.head["src/app.go"] = "old content\n"
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolReadHeadFile,
		mustInput(t, map[string]string{"path": "src/app.go"}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if result.Content != "old content\n" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestExecute_ReplaceInFile(t *testing.T) {
	ops := newFakeOps()
	ops.files["main.go"] = "foo bar foo"
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolReplaceInFile,
		mustInput(t, map[string]string{"path": "main.go", "old": "foo", "new": "baz"}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if ops.files["main.go"] != "baz bar baz" {
		t.Errorf("file = %q", ops.files["main.go"])
	}
}

func TestExecute_ReplaceInFile_AbsentIsNotError(t *testing.T) {
	ops := newFakeOps()
	ops.files["main.go"] = "content"
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolReplaceInFile,
		mustInput(t, map[string]string{"path": "main.go", "old": "nope", "new": "x"}))
	if result.IsError {
		t.Errorf("absent old string should not be an error: %s", result.Content)
	}
	if !strings.Contains(result.Content, "unchanged") {
		t.Errorf("Content = %q, want mention of unchanged file", result.Content)
	}
}

func TestExecute_ApplyPatch(t *testing.T) {
	ops := newFakeOps()
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolApplyPatch,
		mustInput(t, map[string]string{"path": "main.go", "patch": "diff content"}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if len(ops.patched) != 1 || ops.patched[0] != "main.go" {
		t.Errorf("patched = %v", ops.patched)
	}
}

func TestExecute_ApplyPatch_Failure(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, nil)

	result := e.Execute(context.Background(), toolApplyPatch,
		mustInput(t, map[string]string{"path": "main.go", "patch": "bad"}))
	if !result.IsError {
		t.Error("expected error for failing patch")
	}
}

func TestExecute_DeleteFile(t *testing.T) {
	ops := newFakeOps()
	ops.files["stale.go"] = "x"
	e := NewToolExecutor(ops, nil, nil)

	result := e.Execute(context.Background(), toolDeleteFile,
		mustInput(t, map[string]string{"path": "stale.go"}))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if len(ops.deleted) != 1 {
		t.Errorf("deleted = %v", ops.deleted)
	}
}

func TestExecute_ProtectedPathRefused(t *testing.T) {
	ops := newFakeOps()
	ops.files[".github/workflows/ci.yml"] = "jobs: {}"
	e := NewToolExecutor(ops, protect.NewGuard(), nil)

	for _, tc := range []struct {
		tool  string
		input map[string]string
	}{
		{toolDeleteFile, map[string]string{"path": ".github/workflows/ci.yml"}},
		{toolReplaceInFile, map[string]string{"path": ".github/workflows/ci.yml", "old": "a", "new": "b"}},
		{toolApplyPatch, map[string]string{"path": ".github/workflows/ci.yml", "patch": "diff"}},
	} {
		result := e.Execute(context.Background(), tc.tool, mustInput(t, tc.input))
		if !result.IsError {
			t.Errorf("%s on protected path should be refused", tc.tool)
		}
		if !strings.Contains(result.Content, "Refusing") {
			t.Errorf("%s refusal content = %q", tc.tool, result.Content)
		}
	}

	// Reads stay allowed on protected paths
	result := e.Execute(context.Background(), toolReadFile,
		mustInput(t, map[string]string{"path": ".github/workflows/ci.yml"}))
	if result.IsError {
		t.Errorf("read of protected path should succeed: %s", result.Content)
	}
}

func TestExecute_ListConflicts(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, func() ([]string, error) {
		return []string{"a.go", "b.go"}, nil
	})

	result := e.Execute(context.Background(), toolListConflicts, json.RawMessage(`{}`))
	if result.IsError {
		t.Fatalf("unexpected error: %s", result.Content)
	}
	if result.Content != "a.go\nb.go" {
		t.Errorf("Content = %q", result.Content)
	}
}

func TestExecute_ListConflicts_Empty(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, func() ([]string, error) {
		return nil, nil
	})

	result := e.Execute(context.Background(), toolListConflicts, json.RawMessage(`{}`))
	if result.IsError || !strings.Contains(result.Content, "No unresolved conflicts") {
		t.Errorf("result = %+v", result)
	}
}

func TestExecute_ListConflicts_Error(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, func() ([]string, error) {
		return nil, errors.New("not a git repository")
	})

	result := e.Execute(context.Background(), toolListConflicts, json.RawMessage(`{}`))
	if !result.IsError {
		t.Error("expected error when listing fails")
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	e := NewToolExecutor(newFakeOps(), nil, nil)

	result := e.Execute(context.Background(), "launch_rocket", json.RawMessage(`{}`))
	if !result.IsError {
		t.Error("expected error for unknown tool")
	}
}

func TestToolCallHandler(t *testing.T) {
	ops := newFakeOps()
	ops.files["main.go"] = "x"
	e := NewToolExecutor(ops, nil, nil)

	type call struct {
		tool, path, diagnostic string
		success                bool
	}
	var calls []call
	e.SetToolCallHandler(func(tool, path string, success bool, diagnostic string) {
		calls = append(calls, call{tool, path, diagnostic, success})
	})

	e.Execute(context.Background(), toolReadFile, mustInput(t, map[string]string{"path": "main.go"}))
	e.Execute(context.Background(), toolReadFile, mustInput(t, map[string]string{"path": "missing.go"}))

	if len(calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(calls))
	}
	if !calls[0].success || calls[0].path != "main.go" {
		t.Errorf("first call = %+v", calls[0])
	}
	if calls[1].success || calls[1].diagnostic == "" {
		t.Errorf("second call = %+v", calls[1])
	}
}

func TestFormatToolAction(t *testing.T) {
	input := mustInput(t, map[string]string{"path": "src/app.go"})

	tests := []struct {
		tool string
		want string
	}{
		{toolReadFile, "Reading src/app.go"},
		{toolReadHeadFile, "Reading src/app.go at HEAD"},
		{toolReplaceInFile, "Replacing in src/app.go"},
		{toolApplyPatch, "Patching src/app.go"},
		{toolDeleteFile, "Deleting src/app.go"},
		{toolListConflicts, "Listing conflicts"},
		{"other", "other"},
	}

	for _, tt := range tests {
		if got := FormatToolAction(tt.tool, input); got != tt.want {
			t.Errorf("FormatToolAction(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}
