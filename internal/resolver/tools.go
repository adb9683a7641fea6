package resolver

import (
	"github.com/anthropics/anthropic-sdk-go"
)

// Tool names exposed to the model.
const (
	toolReadFile      = "read_file"
	toolReadHeadFile  = "read_head_file"
	toolReplaceInFile = "replace_in_file"
	toolApplyPatch    = "apply_patch"
	toolDeleteFile    = "delete_file"
	toolListConflicts = "list_conflicts"
)

// ToolDefinitions returns the tool schemas for conflict resolution API calls.
func ToolDefinitions() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolReadFile,
				Description: anthropic.String("Read a file from the working tree, including any conflict markers."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Path relative to the repository root",
						},
					},
					Required: []string{"path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolReadHeadFile,
				Description: anthropic.String("Read a file as it exists at HEAD, before any merge changes."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Path relative to the repository root",
						},
					},
					Required: []string{"path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolReplaceInFile,
				Description: anthropic.String("Replace every occurrence of a string in a file. Succeeds with no effect if the string is absent."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Path relative to the repository root",
						},
						"old": map[string]interface{}{
							"type":        "string",
							"description": "The exact text to find",
						},
						"new": map[string]interface{}{
							"type":        "string",
							"description": "The text to replace it with",
						},
					},
					Required: []string{"path", "old", "new"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolApplyPatch,
				Description: anthropic.String("Apply a patch to a file. Accepts either a '*** Begin Patch' pseudo-patch or a standard unified diff applied via git apply."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Path relative to the repository root",
						},
						"patch": map[string]interface{}{
							"type":        "string",
							"description": "The patch content",
						},
					},
					Required: []string{"path", "patch"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolDeleteFile,
				Description: anthropic.String("Delete a file from the working tree."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{
						"path": map[string]interface{}{
							"type":        "string",
							"description": "Path relative to the repository root",
						},
					},
					Required: []string{"path"},
				},
			},
		},
		{
			OfTool: &anthropic.ToolParam{
				Name:        toolListConflicts,
				Description: anthropic.String("List files that still contain unresolved merge conflicts."),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]interface{}{},
					Required:   []string{},
				},
			},
		},
	}
}
