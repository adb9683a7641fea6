package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/calebsw/mergehand/internal/config"
	"github.com/calebsw/mergehand/internal/git"
	"github.com/calebsw/mergehand/internal/history"
	"github.com/calebsw/mergehand/internal/protect"
	"github.com/calebsw/mergehand/internal/report"
	"github.com/calebsw/mergehand/internal/resolver"
)

var (
	resolveRepo          string
	resolveModel         string
	resolveMaxIterations int
	resolveCommit        bool
	resolveCommitMessage string
	resolveNoHistory     bool
	resolveNoReport      bool
	resolveQuiet         bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve merge conflicts in the working tree",
	Long: `Resolve the merge conflicts currently present in the repository.

The command lists unmerged paths, hands them to the model with read and
mutation tools, and validates that no conflict markers remain before
staging the resolved files. With --commit the resolution is committed.

Exit status is non-zero when any conflict remains unresolved, so CI
pipelines can fail the job on a partial resolution.`,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveRepo, "repo", ".", "Path to the repository")
	resolveCmd.Flags().StringVar(&resolveModel, "model", "", "Model to use (defaults to configured model)")
	resolveCmd.Flags().IntVar(&resolveMaxIterations, "max-iterations", 0, "Maximum API round-trips (defaults to configured value)")
	resolveCmd.Flags().BoolVar(&resolveCommit, "commit", false, "Commit the resolution after staging")
	resolveCmd.Flags().StringVar(&resolveCommitMessage, "commit-message", "", "Commit message when --commit is set")
	resolveCmd.Flags().BoolVar(&resolveNoHistory, "no-history", false, "Skip journaling the run to .mergehand/history.db")
	resolveCmd.Flags().BoolVar(&resolveNoReport, "no-report", false, "Skip writing the YAML run report")
	resolveCmd.Flags().BoolVar(&resolveQuiet, "quiet", false, "Suppress streaming output")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repoPath, err := filepath.Abs(resolveRepo)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}

	gitRunner := git.NewRunner(repoPath)

	conflicted, err := gitRunner.ConflictedFiles()
	if err != nil {
		return fmt.Errorf("list conflicted files: %w", err)
	}
	if len(conflicted) == 0 {
		fmt.Println("No merge conflicts to resolve.")
		return nil
	}

	fmt.Printf("Resolving %d conflicted file(s):\n", len(conflicted))
	for _, f := range conflicted {
		fmt.Printf("  %s\n", color.YellowString(f))
	}

	model := cfg.Anthropic.Model
	if resolveModel != "" {
		model = resolveModel
	}

	client, err := resolver.NewClient(resolver.ClientConfig{
		Model:         anthropic.Model(model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	signals, err := resolver.NewSignalManager(repoPath)
	if err != nil {
		return fmt.Errorf("create signal manager: %w", err)
	}
	defer signals.Close()

	guard := protect.NewGuard()
	projectConfig := filepath.Join(repoPath, ".mergehand.yaml")
	if _, err := os.Stat(projectConfig); err == nil {
		if err := guard.LoadConfig(projectConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load protected paths from %s: %v\n", projectConfig, err)
		}
	}

	logger := resolver.NewDebugLoggerForRepo(repoPath)
	defer logger.Close()

	var journal *history.DB
	if cfg.History.Enabled && !resolveNoHistory {
		journal, err = history.OpenProject(repoPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: journal unavailable: %v\n", err)
		} else {
			defer journal.Close()
			if err := journal.Migrate(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: journal migration failed: %v\n", err)
				journal = nil
			}
		}
	}

	reportDir := ""
	if cfg.Report.Enabled && !resolveNoReport {
		reportDir = cfg.Report.Dir
		if reportDir == "" {
			reportDir = report.DefaultDir(repoPath)
		}
	}

	maxIterations := cfg.Resolver.MaxIterations
	if resolveMaxIterations > 0 {
		maxIterations = resolveMaxIterations
	}
	commitMessage := cfg.Resolver.CommitMessage
	if resolveCommitMessage != "" {
		commitMessage = resolveCommitMessage
	}

	r := resolver.New(resolver.Options{
		RepoPath:      repoPath,
		Client:        client,
		Git:           gitRunner,
		Signals:       signals,
		Guard:         guard,
		Journal:       journal,
		ReportDir:     reportDir,
		MaxIterations: maxIterations,
		Commit:        resolveCommit || cfg.Resolver.Commit,
		CommitMessage: commitMessage,
		OnStream:      streamPrinter(),
		DebugLog:      logger.Log,
	})

	outcome, err := r.Resolve(context.Background())
	printOutcome(outcome)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	return nil
}

// streamPrinter returns a stream handler printing tool activity to stdout.
func streamPrinter() func(resolver.StreamEvent) {
	if resolveQuiet {
		return nil
	}
	return func(event resolver.StreamEvent) {
		switch event.Type {
		case "tool_use":
			fmt.Printf("  %s %s\n", color.CyanString("→"), resolver.FormatToolAction(event.Tool, event.Input))
		case "error":
			fmt.Printf("  %s %s\n", color.RedString("✗"), event.Content)
		case "done":
			fmt.Printf("  %s model finished\n", color.GreenString("✓"))
		}
	}
}

func printOutcome(outcome *resolver.Outcome) {
	if outcome == nil {
		return
	}

	fmt.Println()
	if outcome.FilesResolved > 0 {
		fmt.Printf("%s Resolved %d file(s)\n", color.GreenString("✓"), outcome.FilesResolved)
	} else {
		fmt.Printf("%s No files resolved\n", color.RedString("✗"))
	}
	if outcome.Committed {
		fmt.Println("  Resolution committed")
	}
	fmt.Printf("  Session %s: %d iteration(s), %d tool call(s), %d/%d tokens in/out\n",
		outcome.SessionID, outcome.Iterations, outcome.ToolCalls, outcome.TokensIn, outcome.TokensOut)
	if outcome.ReportPath != "" {
		fmt.Printf("  Report: %s\n", outcome.ReportPath)
	}
}
