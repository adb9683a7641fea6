package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calebsw/mergehand/internal/conflict"
	"github.com/calebsw/mergehand/internal/git"
)

var (
	statusRepo    string
	statusVerbose bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show unresolved merge conflicts",
	Long: `Display the merge conflicts currently present in the repository.

Shows each unmerged path with the number of conflict regions it contains.
With --verbose, prints every conflict region with its surrounding context.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusRepo, "repo", ".", "Path to the repository")
	statusCmd.Flags().BoolVarP(&statusVerbose, "verbose", "v", false, "Show conflict regions with context")
}

func runStatus(cmd *cobra.Command, args []string) error {
	repoPath, err := filepath.Abs(statusRepo)
	if err != nil {
		return fmt.Errorf("resolve repo path: %w", err)
	}

	gitRunner := git.NewRunner(repoPath)

	paths, err := gitRunner.ConflictedFiles()
	if err != nil {
		return fmt.Errorf("list conflicted files: %w", err)
	}
	if len(paths) == 0 {
		fmt.Println("No merge conflicts.")
		return nil
	}

	var files []conflict.FileConflicts
	for _, p := range paths {
		content, err := os.ReadFile(filepath.Join(repoPath, p))
		if err != nil {
			files = append(files, conflict.FileConflicts{Path: p})
			continue
		}
		files = append(files, conflict.FileConflicts{
			Path:    p,
			Regions: conflict.Scan(string(content)),
		})
	}

	fmt.Println(conflict.FormatSummary(files))

	if statusVerbose {
		for _, f := range files {
			if len(f.Regions) == 0 {
				continue
			}
			fmt.Println(conflict.FormatRegions(f))
		}
	}

	return nil
}
