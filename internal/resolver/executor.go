package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calebsw/mergehand/internal/fileops"
	"github.com/calebsw/mergehand/internal/protect"
)

// FileOps is the subset of file operations the executor dispatches to.
type FileOps interface {
	ReadCurrentFile(path string) (string, fileops.Result)
	ReadHeadFile(path string) (string, fileops.Result)
	DeleteFile(path string) fileops.Result
	ReplaceInFile(path, original, replacement string) fileops.Result
	ApplyPatch(path, patch string) fileops.Result
}

// ToolExecutor executes tool calls from the model against the repository.
// Mutations on protected paths are refused before they reach the filesystem.
type ToolExecutor struct {
	ops           FileOps
	guard         *protect.Guard
	listConflicts func() ([]string, error)
	onToolCall    func(tool, path string, success bool, diagnostic string)
}

// NewToolExecutor creates a tool executor over the given file operations.
// listConflicts reports files still in conflict; it may be nil.
func NewToolExecutor(ops FileOps, guard *protect.Guard, listConflicts func() ([]string, error)) *ToolExecutor {
	return &ToolExecutor{
		ops:           ops,
		guard:         guard,
		listConflicts: listConflicts,
	}
}

// SetToolCallHandler sets a callback invoked after every tool execution,
// used to journal tool calls.
func (e *ToolExecutor) SetToolCallHandler(fn func(tool, path string, success bool, diagnostic string)) {
	e.onToolCall = fn
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

// Execute runs a tool by name with the given JSON input.
func (e *ToolExecutor) Execute(ctx context.Context, name string, input json.RawMessage) ToolResult {
	result, path := e.dispatch(name, input)
	if e.onToolCall != nil {
		diagnostic := ""
		if result.IsError {
			diagnostic = result.Content
		}
		e.onToolCall(name, path, !result.IsError, diagnostic)
	}
	return result
}

func (e *ToolExecutor) dispatch(name string, input json.RawMessage) (ToolResult, string) {
	switch name {
	case toolReadFile:
		return e.execReadFile(input)
	case toolReadHeadFile:
		return e.execReadHeadFile(input)
	case toolReplaceInFile:
		return e.execReplaceInFile(input)
	case toolApplyPatch:
		return e.execApplyPatch(input)
	case toolDeleteFile:
		return e.execDeleteFile(input)
	case toolListConflicts:
		return e.execListConflicts(), ""
	default:
		return ToolResult{Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}, ""
	}
}

// checkProtected refuses a mutation when the path is protected. Returns a
// non-nil ToolResult when the mutation must not proceed.
func (e *ToolExecutor) checkProtected(path string) *ToolResult {
	if e.guard == nil {
		return nil
	}
	if protected, reason := e.guard.IsProtectedWithReason(path); protected {
		return &ToolResult{
			Content: fmt.Sprintf("Refusing to modify %s: %s", path, reason),
			IsError: true,
		}
	}
	return nil
}

func (e *ToolExecutor) execReadFile(input json.RawMessage) (ToolResult, string) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, ""
	}

	content, result := e.ops.ReadCurrentFile(params.Path)
	if !result.Success {
		return ToolResult{Content: result.Diagnostic, IsError: true}, params.Path
	}
	return ToolResult{Content: content}, params.Path
}

func (e *ToolExecutor) execReadHeadFile(input json.RawMessage) (ToolResult, string) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, ""
	}

	content, result := e.ops.ReadHeadFile(params.Path)
	if !result.Success {
		return ToolResult{Content: result.Diagnostic, IsError: true}, params.Path
	}
	return ToolResult{Content: content}, params.Path
}

func (e *ToolExecutor) execReplaceInFile(input json.RawMessage) (ToolResult, string) {
	var params struct {
		Path string `json:"path"`
		Old  string `json:"old"`
		New  string `json:"new"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, ""
	}

	if refused := e.checkProtected(params.Path); refused != nil {
		return *refused, params.Path
	}

	result := e.ops.ReplaceInFile(params.Path, params.Old, params.New)
	if result.Success {
		return ToolResult{Content: fmt.Sprintf("Replaced all occurrences in %s", params.Path)}, params.Path
	}
	// A failed result with no diagnostic means the old string was absent:
	// the file is unchanged and that is not an error.
	if result.Diagnostic == "" {
		return ToolResult{Content: fmt.Sprintf("No occurrences found in %s; file unchanged", params.Path)}, params.Path
	}
	return ToolResult{Content: result.Diagnostic, IsError: true}, params.Path
}

func (e *ToolExecutor) execApplyPatch(input json.RawMessage) (ToolResult, string) {
	var params struct {
		Path  string `json:"path"`
		Patch string `json:"patch"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, ""
	}

	if refused := e.checkProtected(params.Path); refused != nil {
		return *refused, params.Path
	}

	result := e.ops.ApplyPatch(params.Path, params.Patch)
	if !result.Success {
		return ToolResult{Content: result.Diagnostic, IsError: true}, params.Path
	}
	return ToolResult{Content: fmt.Sprintf("Patch applied to %s", params.Path)}, params.Path
}

func (e *ToolExecutor) execDeleteFile(input json.RawMessage) (ToolResult, string) {
	var params struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}, ""
	}

	if refused := e.checkProtected(params.Path); refused != nil {
		return *refused, params.Path
	}

	result := e.ops.DeleteFile(params.Path)
	if !result.Success {
		return ToolResult{Content: result.Diagnostic, IsError: true}, params.Path
	}
	return ToolResult{Content: fmt.Sprintf("Deleted %s", params.Path)}, params.Path
}

func (e *ToolExecutor) execListConflicts() ToolResult {
	if e.listConflicts == nil {
		return ToolResult{Content: "Conflict listing is not available"}
	}

	files, err := e.listConflicts()
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to list conflicts: %v", err), IsError: true}
	}
	if len(files) == 0 {
		return ToolResult{Content: "No unresolved conflicts remain"}
	}
	return ToolResult{Content: strings.Join(files, "\n")}
}

// FormatToolAction returns a human-readable description of a tool call.
func FormatToolAction(name string, input json.RawMessage) string {
	var p struct {
		Path string `json:"path"`
	}
	json.Unmarshal(input, &p)

	switch name {
	case toolReadFile:
		return "Reading " + p.Path
	case toolReadHeadFile:
		return "Reading " + p.Path + " at HEAD"
	case toolReplaceInFile:
		return "Replacing in " + p.Path
	case toolApplyPatch:
		return "Patching " + p.Path
	case toolDeleteFile:
		return "Deleting " + p.Path
	case toolListConflicts:
		return "Listing conflicts"
	default:
		return name
	}
}
