// Package git provides an interface for git operations.
package git

// FileOperations defines the interface for git file operations.
type FileOperations interface {
	// ShowFile returns the contents of a file at a specific ref.
	ShowFile(ref, path string) (string, error)
	// CheckoutOurs checks out the "ours" version of a conflicted file.
	CheckoutOurs(path string) error
	// CheckoutTheirs checks out the "theirs" version of a conflicted file.
	CheckoutTheirs(path string) error
}

// PatchOperations defines the interface for applying patches.
type PatchOperations interface {
	// ApplyPatchFile applies a patch file to the working tree (git apply).
	ApplyPatchFile(path string) error
}

// DiffOperations defines the interface for git diff and status operations.
type DiffOperations interface {
	// Status returns the output of git status --porcelain.
	Status() (string, error)
	// ConflictedFiles returns a list of files with unmerged changes.
	ConflictedFiles() ([]string, error)
	// HasConflicts returns true if there are merge conflicts.
	HasConflicts() (bool, error)
	// DiffBetween returns the diff between two refs.
	DiffBetween(ref1, ref2 string) (string, error)
	// ChangedFilesBetween returns files changed between two refs.
	ChangedFilesBetween(ref1, ref2 string) ([]string, error)
}

// CommitOperations defines the interface for git commit operations.
type CommitOperations interface {
	// Add stages the specified files for commit.
	Add(paths ...string) error
	// Commit creates a new commit with the given message.
	Commit(message string) error
}

// BranchOperations defines the interface for git branch queries.
type BranchOperations interface {
	// CurrentBranch returns the name of the current branch.
	CurrentBranch() (string, error)
}

// Runner defines the complete interface for git operations.
// This interface embeds all focused interfaces for full functionality.
// Consumers should prefer using focused interfaces when possible.
type Runner interface {
	FileOperations
	PatchOperations
	DiffOperations
	CommitOperations
	BranchOperations
	// Run executes an arbitrary git command with the given arguments.
	// Returns the command output and an error if the command fails.
	Run(args ...string) (string, error)
}
