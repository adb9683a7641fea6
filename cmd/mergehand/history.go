package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/calebsw/mergehand/internal/history"
)

var (
	historyRepo  string
	historyLimit int
	historyCalls bool
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Show past resolution runs",
	Long: `Display resolution runs recorded in .mergehand/history.db.

Without arguments, lists recent sessions. With a session ID, shows the
tool calls made during that session.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyRepo, "repo", ".", "Path to the repository")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum sessions to list")
	historyCmd.Flags().BoolVar(&historyCalls, "calls", false, "Include tool calls when showing a session")
}

func runHistory(cmd *cobra.Command, args []string) error {
	repoPath, err := filepath.Abs(historyRepo)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}

	dbPath := history.ProjectDBPath(repoPath)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No resolution history. Run 'mergehand resolve' first.")
		return nil
	}

	db, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}

	if len(args) > 0 {
		return showSession(db, args[0])
	}

	sessions, err := db.ListSessions(historyLimit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No resolution history.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s  %s  branch=%s  files=%d\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.ID,
			colorOutcome(s.Outcome),
			s.Branch,
			s.FilesResolved)
	}
	return nil
}

func showSession(db *history.DB, id string) error {
	s, err := db.GetSession(id)
	if err != nil {
		return err
	}

	fmt.Printf("Session:  %s\n", s.ID)
	fmt.Printf("Branch:   %s\n", s.Branch)
	fmt.Printf("Model:    %s\n", s.Model)
	fmt.Printf("Outcome:  %s\n", colorOutcome(s.Outcome))
	fmt.Printf("Files:    %d resolved\n", s.FilesResolved)
	fmt.Printf("Tokens:   %d in / %d out\n", s.InputTokens, s.OutputTokens)
	fmt.Printf("Started:  %s\n", s.StartedAt.Local().Format(time.RFC1123))
	if s.FinishedAt != nil {
		fmt.Printf("Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Second))
	}

	if !historyCalls {
		return nil
	}

	calls, err := db.ListToolCalls(id)
	if err != nil {
		return fmt.Errorf("list tool calls: %w", err)
	}
	if len(calls) > 0 {
		fmt.Println("\nTool calls:")
		for _, c := range calls {
			mark := color.GreenString("✓")
			if !c.Success {
				mark = color.RedString("✗")
			}
			line := fmt.Sprintf("  %s %s %s", mark, c.Tool, c.Path)
			if c.Diagnostic != "" {
				line += ": " + c.Diagnostic
			}
			fmt.Println(line)
		}
	}
	return nil
}

func colorOutcome(outcome string) string {
	switch outcome {
	case history.OutcomeResolved:
		return color.GreenString(outcome)
	case history.OutcomeFailed:
		return color.RedString(outcome)
	case history.OutcomeStopped:
		return color.YellowString(outcome)
	default:
		return outcome
	}
}
