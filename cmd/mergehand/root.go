package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mergehand",
	Short: "LLM-assisted merge conflict resolution for CI",
	Long: `Mergehand resolves git merge conflicts programmatically.

It is built for CI jobs that merge bot or agent branches: when a merge
stops on conflicts, mergehand hands the conflicted files to a Claude
model through a small tool surface (read working tree, read HEAD,
replace, patch, delete) and validates that no conflict markers survive
before staging the result.

Core capabilities:
- Reads both sides of every conflict before resolving
- Applies changes via string replacement or patches (pseudo-patch or git apply)
- Refuses mutations on protected paths (workflows, secrets, keys)
- Journals every run and tool call to .mergehand/history.db
- Writes a YAML report per run for CI artifact collection`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
