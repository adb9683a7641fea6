// Package git provides an interface for git operations.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// ExecRunner implements Runner using exec.Command.
type ExecRunner struct {
	repoPath string
}

// NewRunner creates a new git runner for the repository at the given path.
func NewRunner(repoPath string) *ExecRunner {
	return &ExecRunner{repoPath: repoPath}
}

// run executes a git command and returns its output.
func (r *ExecRunner) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

// runSilent executes a git command and ignores output.
func (r *ExecRunner) runSilent(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.repoPath
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, string(out))
	}
	return nil
}

// Run executes an arbitrary git command with the given arguments.
// This is the public version of run() for generic git operations.
func (r *ExecRunner) Run(args ...string) (string, error) {
	return r.run(args...)
}

// ShowFile returns the contents of a file at a specific ref.
// The output is not trimmed so file content round-trips exactly.
func (r *ExecRunner) ShowFile(ref, path string) (string, error) {
	cmd := exec.Command("git", "show", ref+":"+path)
	cmd.Dir = r.repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git show %s:%s: %w", ref, path, err)
	}
	return string(out), nil
}

// CheckoutOurs checks out the "ours" version of a conflicted file.
func (r *ExecRunner) CheckoutOurs(path string) error {
	return r.runSilent("checkout", "--ours", path)
}

// CheckoutTheirs checks out the "theirs" version of a conflicted file.
func (r *ExecRunner) CheckoutTheirs(path string) error {
	return r.runSilent("checkout", "--theirs", path)
}

// ApplyPatchFile applies a patch file to the working tree.
func (r *ExecRunner) ApplyPatchFile(path string) error {
	return r.runSilent("apply", path)
}

// Status returns the output of git status --porcelain.
func (r *ExecRunner) Status() (string, error) {
	return r.run("status", "--porcelain")
}

// ConflictedFiles returns a list of files with unmerged changes.
func (r *ExecRunner) ConflictedFiles() ([]string, error) {
	out, err := r.run("diff", "--name-only", "--diff-filter=U")
	if err != nil {
		// If there are no conflicts, git may exit with code 0 but empty output
		return nil, nil
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// HasConflicts returns true if there are merge conflicts.
func (r *ExecRunner) HasConflicts() (bool, error) {
	status, err := r.Status()
	if err != nil {
		return false, err
	}
	// Check for conflict markers (UU, AA, DD, etc.)
	for _, line := range strings.Split(status, "\n") {
		if len(line) >= 2 {
			prefix := line[:2]
			if prefix == "UU" || prefix == "AA" || prefix == "DD" ||
				prefix == "AU" || prefix == "UA" || prefix == "DU" || prefix == "UD" {
				return true, nil
			}
		}
	}
	return false, nil
}

// DiffBetween returns the diff between two refs.
func (r *ExecRunner) DiffBetween(ref1, ref2 string) (string, error) {
	return r.run("diff", ref1, ref2)
}

// ChangedFilesBetween returns files changed between two refs.
func (r *ExecRunner) ChangedFilesBetween(ref1, ref2 string) ([]string, error) {
	out, err := r.run("diff", "--name-only", ref1, ref2)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Add stages the specified files for commit.
func (r *ExecRunner) Add(paths ...string) error {
	args := append([]string{"add"}, paths...)
	return r.runSilent(args...)
}

// Commit creates a new commit with the given message.
func (r *ExecRunner) Commit(message string) error {
	return r.runSilent("commit", "-m", message)
}

// CurrentBranch returns the name of the current branch.
func (r *ExecRunner) CurrentBranch() (string, error) {
	return r.run("rev-parse", "--abbrev-ref", "HEAD")
}

// Verify ExecRunner implements Runner at compile time.
var _ Runner = (*ExecRunner)(nil)
