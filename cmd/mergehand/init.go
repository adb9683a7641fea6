package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Prepare a repository for mergehand",
	Long: `Set up the .mergehand directory structure in the current repository.

Creates:
  - .mergehand/ with signals/, reports/ and logs/ subdirectories
  - .mergehand/guidelines.md template for project resolution guidance
  - .mergehand.yaml template for protected paths
  - .gitignore entries for mergehand runtime files`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	if _, err := exec.LookPath("git"); err != nil {
		printStatus("✗", "Git not found", color.FgRed)
		return fmt.Errorf("git is required")
	}
	printStatus("✓", "Git found", color.FgGreen)

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	dirs := []string{
		filepath.Join(cwd, ".mergehand"),
		filepath.Join(cwd, ".mergehand", "signals"),
		filepath.Join(cwd, ".mergehand", "reports"),
		filepath.Join(cwd, ".mergehand", "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	printStatus("✓", "Created .mergehand directory structure", color.FgGreen)

	guidelinesPath := filepath.Join(cwd, ".mergehand", "guidelines.md")
	if _, err := os.Stat(guidelinesPath); os.IsNotExist(err) {
		if err := os.WriteFile(guidelinesPath, []byte(guidelinesTemplate), 0644); err != nil {
			return fmt.Errorf("write guidelines template: %w", err)
		}
		printStatus("✓", "Created .mergehand/guidelines.md template", color.FgGreen)
	}

	configPath := filepath.Join(cwd, ".mergehand.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(projectConfigTemplate), 0644); err != nil {
			return fmt.Errorf("write config template: %w", err)
		}
		printStatus("✓", "Created .mergehand.yaml template", color.FgGreen)
	}

	if err := updateGitignore(cwd); err != nil {
		return fmt.Errorf("update .gitignore: %w", err)
	}
	printStatus("✓", "Updated .gitignore with mergehand entries", color.FgGreen)

	fmt.Printf("\n%s Mergehand initialization complete!\n", color.GreenString("✓"))
	return nil
}

// updateGitignore appends mergehand runtime entries if they are absent.
func updateGitignore(cwd string) error {
	path := filepath.Join(cwd, ".gitignore")
	entries := []string{
		".mergehand/signals/",
		".mergehand/logs/",
		".mergehand/history.db*",
	}

	existing, _ := os.ReadFile(path)
	content := string(existing)

	var missing []string
	for _, e := range entries {
		if !strings.Contains(content, e) {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if content != "" && !strings.HasSuffix(content, "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	if _, err := f.WriteString("\n# mergehand\n" + strings.Join(missing, "\n") + "\n"); err != nil {
		return err
	}
	return nil
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

const guidelinesTemplate = `# Resolution Guidelines

Project-specific guidance injected into the resolver's system prompt.
Edit this file to steer how conflicts get resolved in this repository.

## Preferences

<!-- e.g. "For generated files, always take the incoming branch" -->

## Constraints

<!-- e.g. "Never modify the public API in pkg/" -->
`

const projectConfigTemplate = `# mergehand project configuration
# Protected paths are readable but never modified by the resolver.
protected:
  patterns: []
  #  - "db/migrations/**"
  keywords: []
  #  - "schema"
  file_types: []
  #  - ".sql"

resolver:
  max_iterations: 30
  commit: false
`
