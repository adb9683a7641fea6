// Package report writes YAML resolution reports. Each run produces one
// artifact under .mergehand/reports/ so CI jobs can archive what was
// resolved and how.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

// Report summarizes one resolution run.
type Report struct {
	SessionID  string       `yaml:"session_id"`
	Branch     string       `yaml:"branch"`
	Model      string       `yaml:"model"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Outcome    string       `yaml:"outcome"`
	Files      []FileResult `yaml:"files"`
	ToolCalls  []ToolCall   `yaml:"tool_calls,omitempty"`
	Tokens     TokenUsage   `yaml:"tokens"`
}

// FileResult records the resolution state of a single conflicted file.
type FileResult struct {
	Path     string `yaml:"path"`
	Regions  int    `yaml:"regions"`
	Resolved bool   `yaml:"resolved"`
}

// ToolCall records one tool invocation made during the run.
type ToolCall struct {
	Tool       string `yaml:"tool"`
	Path       string `yaml:"path,omitempty"`
	Success    bool   `yaml:"success"`
	Diagnostic string `yaml:"diagnostic,omitempty"`
}

// TokenUsage records API token consumption for the run.
type TokenUsage struct {
	Input  int64 `yaml:"input"`
	Output int64 `yaml:"output"`
}

// DefaultDir returns the report directory for a project root.
func DefaultDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".mergehand", "reports")
}

// Write marshals the report to YAML and writes it to dir/<session>.yaml,
// creating the directory if needed. It returns the written path.
func Write(dir string, r *Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	path := filepath.Join(dir, r.SessionID+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

// Read loads a report from disk.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	return &r, nil
}
