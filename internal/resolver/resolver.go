package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calebsw/mergehand/internal/conflict"
	"github.com/calebsw/mergehand/internal/fileops"
	"github.com/calebsw/mergehand/internal/git"
	"github.com/calebsw/mergehand/internal/history"
	"github.com/calebsw/mergehand/internal/protect"
	"github.com/calebsw/mergehand/internal/report"
)

// loopRunner abstracts the resolution loop so the orchestration around it
// can be tested without an API client.
type loopRunner interface {
	Run(ctx context.Context, systemPrompt, userPrompt string) (*LoopResult, error)
}

// Options configures a Resolver.
type Options struct {
	RepoPath string
	Client   *Client
	Git      git.Runner
	Signals  *SignalManager
	Guard    *protect.Guard

	// Journal is the optional resolution journal. Journal failures are
	// logged and ignored, never fatal.
	Journal *history.DB
	// ReportDir is where the YAML run report is written. Empty disables
	// report writing.
	ReportDir string

	MaxIterations int
	Commit        bool
	CommitMessage string

	OnStream func(StreamEvent)
	DebugLog func(format string, args ...interface{})
}

// Outcome summarizes a completed resolution run.
type Outcome struct {
	SessionID     string
	Branch        string
	FilesResolved int
	TokensIn      int64
	TokensOut     int64
	Iterations    int
	ToolCalls     int
	Committed     bool
	ReportPath    string
}

// Resolver runs the end-to-end conflict resolution flow: detect conflicts,
// drive the model loop, validate the result, and stage or commit it.
type Resolver struct {
	opts     Options
	loop     loopRunner
	executor *ToolExecutor
	debugLog func(format string, args ...interface{})
}

// New creates a Resolver from the given options.
func New(opts Options) *Resolver {
	debugLog := opts.DebugLog
	if debugLog == nil {
		debugLog = func(format string, args ...interface{}) {}
	}

	ops := fileops.NewOpsWithRunner(opts.RepoPath, opts.Git)
	ops.SetDebugLog(debugLog)

	executor := NewToolExecutor(ops, opts.Guard, opts.Git.ConflictedFiles)

	loop := NewLoop(LoopConfig{
		Client:        opts.Client,
		Executor:      executor,
		Signals:       opts.Signals,
		MaxIterations: opts.MaxIterations,
	})
	if opts.OnStream != nil {
		loop.SetStreamHandler(opts.OnStream)
	}

	return &Resolver{
		opts:     opts,
		loop:     loop,
		executor: executor,
		debugLog: debugLog,
	}
}

// Resolve runs the full resolution flow. A nil error means every conflict
// was resolved and the result was staged (and committed when configured).
func (r *Resolver) Resolve(ctx context.Context) (*Outcome, error) {
	conflicts, err := r.opts.Git.ConflictedFiles()
	if err != nil {
		return nil, fmt.Errorf("list conflicted files: %w", err)
	}

	branch, err := r.opts.Git.CurrentBranch()
	if err != nil {
		branch = ""
	}

	outcome := &Outcome{
		SessionID: uuid.New().String(),
		Branch:    branch,
	}

	if len(conflicts) == 0 {
		r.debugLog("[resolver] no conflicts to resolve")
		return outcome, nil
	}

	startedAt := time.Now()
	model := ""
	if r.opts.Client != nil {
		model = string(r.opts.Client.Model())
	}

	// Journal writes are best-effort
	var toolCalls []report.ToolCall
	if r.opts.Journal != nil {
		if err := r.opts.Journal.CreateSession(outcome.SessionID, branch, model); err != nil {
			r.debugLog("[resolver] journal create session: %v", err)
		}
	}
	r.executor.SetToolCallHandler(func(tool, path string, success bool, diagnostic string) {
		toolCalls = append(toolCalls, report.ToolCall{
			Tool: tool, Path: path, Success: success, Diagnostic: diagnostic,
		})
		if r.opts.Journal != nil {
			if err := r.opts.Journal.RecordToolCall(outcome.SessionID, tool, path, success, diagnostic); err != nil {
				r.debugLog("[resolver] journal tool call: %v", err)
			}
		}
	})

	regionCounts := r.scanRegions(conflicts)

	userPrompt := buildUserPrompt(branch, conflicts)
	loopResult, loopErr := r.loop.Run(ctx, systemPrompt, userPrompt)
	if loopResult == nil {
		loopResult = &LoopResult{}
	}

	outcome.TokensIn = loopResult.TokensIn
	outcome.TokensOut = loopResult.TokensOut
	outcome.Iterations = loopResult.Iterations
	outcome.ToolCalls = loopResult.ToolCalls

	journalOutcome := history.OutcomeResolved
	var resolveErr error

	switch {
	case loopErr != nil && loopResult.Stopped:
		journalOutcome = history.OutcomeStopped
		resolveErr = loopErr
	case loopErr != nil:
		journalOutcome = history.OutcomeFailed
		resolveErr = loopErr
	default:
		resolveErr = r.validateAndStage(conflicts)
		if resolveErr != nil {
			journalOutcome = history.OutcomeFailed
		} else {
			outcome.FilesResolved = len(conflicts)
			if r.opts.Commit {
				if err := r.commit(); err != nil {
					resolveErr = err
					journalOutcome = history.OutcomeFailed
				} else {
					outcome.Committed = true
				}
			}
		}
	}

	if r.opts.Journal != nil {
		if err := r.opts.Journal.FinishSession(outcome.SessionID, journalOutcome,
			outcome.FilesResolved, outcome.TokensIn, outcome.TokensOut); err != nil {
			r.debugLog("[resolver] journal finish session: %v", err)
		}
	}

	if r.opts.ReportDir != "" {
		outcome.ReportPath = r.writeReport(conflicts, regionCounts, toolCalls, outcome, journalOutcome, startedAt, model)
	}

	return outcome, resolveErr
}

// scanRegions counts conflict regions per file for reporting.
func (r *Resolver) scanRegions(paths []string) map[string]int {
	ops := fileops.NewOpsWithRunner(r.opts.RepoPath, r.opts.Git)
	counts := make(map[string]int, len(paths))
	for _, p := range paths {
		content, result := ops.ReadCurrentFile(p)
		if !result.Success {
			continue
		}
		counts[p] = len(conflict.Scan(content))
	}
	return counts
}

// validateAndStage verifies that no conflict markers remain in the originally
// conflicted files, then stages them.
func (r *Resolver) validateAndStage(paths []string) error {
	remaining, err := r.opts.Git.ConflictedFiles()
	if err == nil && len(remaining) > 0 {
		return fmt.Errorf("%d file(s) still unmerged after resolution", len(remaining))
	}

	ops := fileops.NewOpsWithRunner(r.opts.RepoPath, r.opts.Git)
	for _, p := range paths {
		content, result := ops.ReadCurrentFile(p)
		if !result.Success {
			// Deleted during resolution is a valid outcome
			continue
		}
		if conflict.HasMarkers(content) {
			return fmt.Errorf("conflict markers remain in %s", p)
		}
	}

	if err := r.opts.Git.Add(paths...); err != nil {
		return fmt.Errorf("stage resolved files: %w", err)
	}
	return nil
}

func (r *Resolver) commit() error {
	msg := r.opts.CommitMessage
	if msg == "" {
		msg = "Resolve merge conflicts"
	}
	if err := r.opts.Git.Commit(msg); err != nil {
		return fmt.Errorf("commit resolution: %w", err)
	}
	return nil
}

// writeReport writes the YAML run report. Failures are logged and ignored.
func (r *Resolver) writeReport(conflicts []string, regions map[string]int,
	toolCalls []report.ToolCall, outcome *Outcome, journalOutcome string,
	startedAt time.Time, model string) string {

	files := make([]report.FileResult, 0, len(conflicts))
	for _, p := range conflicts {
		files = append(files, report.FileResult{
			Path:     p,
			Regions:  regions[p],
			Resolved: journalOutcome == history.OutcomeResolved,
		})
	}

	path, err := report.Write(r.opts.ReportDir, &report.Report{
		SessionID:  outcome.SessionID,
		Branch:     outcome.Branch,
		Model:      model,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Outcome:    journalOutcome,
		Files:      files,
		ToolCalls:  toolCalls,
		Tokens:     report.TokenUsage{Input: outcome.TokensIn, Output: outcome.TokensOut},
	})
	if err != nil {
		r.debugLog("[resolver] write report: %v", err)
		return ""
	}
	return path
}
