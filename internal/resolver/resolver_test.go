package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/calebsw/mergehand/internal/git"
	"github.com/calebsw/mergehand/internal/history"
)

// fakeGitRunner is a stateful git.Runner fake for resolver tests.
type fakeGitRunner struct {
	conflicted    [][]string // successive ConflictedFiles results
	conflictCalls int
	branch        string
	added         []string
	commits       []string
	commitErr     error
}

func (f *fakeGitRunner) ShowFile(ref, path string) (string, error) { return "", nil }
func (f *fakeGitRunner) CheckoutOurs(path string) error            { return nil }
func (f *fakeGitRunner) CheckoutTheirs(path string) error          { return nil }
func (f *fakeGitRunner) ApplyPatchFile(path string) error          { return nil }
func (f *fakeGitRunner) Status() (string, error)                   { return "", nil }

func (f *fakeGitRunner) ConflictedFiles() ([]string, error) {
	if len(f.conflicted) == 0 {
		return nil, nil
	}
	idx := f.conflictCalls
	if idx >= len(f.conflicted) {
		idx = len(f.conflicted) - 1
	}
	f.conflictCalls++
	return f.conflicted[idx], nil
}

func (f *fakeGitRunner) HasConflicts() (bool, error) {
	files, _ := f.ConflictedFiles()
	return len(files) > 0, nil
}

func (f *fakeGitRunner) DiffBetween(ref1, ref2 string) (string, error)          { return "", nil }
func (f *fakeGitRunner) ChangedFilesBetween(ref1, ref2 string) ([]string, error) { return nil, nil }

func (f *fakeGitRunner) Add(paths ...string) error {
	f.added = append(f.added, paths...)
	return nil
}

func (f *fakeGitRunner) Commit(message string) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeGitRunner) CurrentBranch() (string, error) { return f.branch, nil }
func (f *fakeGitRunner) Run(args ...string) (string, error) { return "", nil }

var _ git.Runner = (*fakeGitRunner)(nil)

// fakeLoop simulates a resolution run by invoking a callback.
type fakeLoop struct {
	result *LoopResult
	err    error
	onRun  func()
}

func (f *fakeLoop) Run(ctx context.Context, systemPrompt, userPrompt string) (*LoopResult, error) {
	if f.onRun != nil {
		f.onRun()
	}
	return f.result, f.err
}

const conflictedContent = `line1
<<<<<<< HEAD
ours
=======
theirs
>>>>>>> feature
line2
`

func writeRepoFile(t *testing.T, repo, path, content string) {
	t.Helper()
	full := filepath.Join(repo, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestResolve_NoConflicts(t *testing.T) {
	repo := t.TempDir()
	fg := &fakeGitRunner{branch: "main"}

	r := New(Options{RepoPath: repo, Git: fg})
	r.loop = &fakeLoop{onRun: func() { t.Error("loop should not run with no conflicts") }}

	outcome, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome.FilesResolved != 0 {
		t.Errorf("FilesResolved = %d, want 0", outcome.FilesResolved)
	}
	if outcome.SessionID == "" {
		t.Error("SessionID should always be set")
	}
}

func TestResolve_Success(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}, nil},
	}

	r := New(Options{RepoPath: repo, Git: fg, CommitMessage: "merge"})
	r.loop = &fakeLoop{
		result: &LoopResult{TokensIn: 100, TokensOut: 40, Iterations: 3, ToolCalls: 5},
		onRun: func() {
			writeRepoFile(t, repo, "main.go", "line1\nresolved\nline2\n")
		},
	}

	outcome, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if outcome.FilesResolved != 1 {
		t.Errorf("FilesResolved = %d, want 1", outcome.FilesResolved)
	}
	if outcome.TokensIn != 100 || outcome.TokensOut != 40 {
		t.Errorf("tokens = %d/%d", outcome.TokensIn, outcome.TokensOut)
	}
	if len(fg.added) != 1 || fg.added[0] != "main.go" {
		t.Errorf("staged = %v, want [main.go]", fg.added)
	}
	if outcome.Committed {
		t.Error("should not commit unless configured")
	}
	if len(fg.commits) != 0 {
		t.Errorf("commits = %v", fg.commits)
	}
}

func TestResolve_CommitWhenConfigured(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}, nil},
	}

	r := New(Options{RepoPath: repo, Git: fg, Commit: true, CommitMessage: "resolve conflicts"})
	r.loop = &fakeLoop{
		result: &LoopResult{},
		onRun: func() {
			writeRepoFile(t, repo, "main.go", "resolved\n")
		},
	}

	outcome, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !outcome.Committed {
		t.Error("Committed should be true")
	}
	if len(fg.commits) != 1 || fg.commits[0] != "resolve conflicts" {
		t.Errorf("commits = %v", fg.commits)
	}
}

func TestResolve_MarkersRemain(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	// Git reports no unmerged paths, but the file still carries markers
	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}, nil},
	}

	r := New(Options{RepoPath: repo, Git: fg})
	r.loop = &fakeLoop{result: &LoopResult{}}

	_, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("expected error when markers remain")
	}
	if !strings.Contains(err.Error(), "markers remain") {
		t.Errorf("err = %v", err)
	}
	if len(fg.added) != 0 {
		t.Errorf("nothing should be staged, got %v", fg.added)
	}
}

func TestResolve_UnmergedPathsRemain(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}, {"main.go"}},
	}

	r := New(Options{RepoPath: repo, Git: fg})
	r.loop = &fakeLoop{result: &LoopResult{}}

	_, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("expected error when unmerged paths remain")
	}
	if !strings.Contains(err.Error(), "unmerged") {
		t.Errorf("err = %v", err)
	}
}

func TestResolve_LoopFailure(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}},
	}

	r := New(Options{RepoPath: repo, Git: fg})
	r.loop = &fakeLoop{result: &LoopResult{Iterations: 2}, err: errors.New("max iterations (2) reached")}

	outcome, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("expected loop error to propagate")
	}
	if outcome.FilesResolved != 0 {
		t.Errorf("FilesResolved = %d, want 0", outcome.FilesResolved)
	}
}

func TestResolve_JournalAndReport(t *testing.T) {
	repo := t.TempDir()
	writeRepoFile(t, repo, "main.go", conflictedContent)

	journal, err := history.Open(filepath.Join(repo, ".mergehand", "history.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()
	if err := journal.Migrate(); err != nil {
		t.Fatalf("migrate journal: %v", err)
	}

	reportDir := filepath.Join(repo, ".mergehand", "reports")

	fg := &fakeGitRunner{
		branch:     "integration",
		conflicted: [][]string{{"main.go"}, nil},
	}

	r := New(Options{
		RepoPath:  repo,
		Git:       fg,
		Journal:   journal,
		ReportDir: reportDir,
	})
	r.loop = &fakeLoop{
		result: &LoopResult{TokensIn: 10, TokensOut: 5},
		onRun: func() {
			writeRepoFile(t, repo, "main.go", "resolved\n")
		},
	}

	outcome, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	session, err := journal.GetSession(outcome.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session.Outcome != history.OutcomeResolved {
		t.Errorf("journal outcome = %q", session.Outcome)
	}
	if session.FilesResolved != 1 {
		t.Errorf("journal FilesResolved = %d", session.FilesResolved)
	}

	if outcome.ReportPath == "" {
		t.Fatal("ReportPath should be set")
	}
	if _, err := os.Stat(outcome.ReportPath); err != nil {
		t.Errorf("report file not written: %v", err)
	}
}
