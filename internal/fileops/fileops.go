// Package fileops provides the file accessor and mutator primitives used to
// resolve merge conflicts. Operations are stateless, single-threaded, and
// fail soft: errors are reported through Result values, never panics or
// returned errors.
package fileops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/calebsw/mergehand/internal/git"
)

// Ops exposes file read and mutation operations against a repository's
// working tree. Relative paths are resolved against the repository root.
type Ops struct {
	repoPath string
	git      git.Runner
	debugLog func(format string, args ...interface{})
}

// NewOps creates an Ops bound to the repository at the given path.
func NewOps(repoPath string) *Ops {
	return &Ops{
		repoPath: repoPath,
		git:      git.NewRunner(repoPath),
		debugLog: func(format string, args ...interface{}) {}, // no-op by default
	}
}

// NewOpsWithRunner creates an Ops with a custom git runner (for testing).
func NewOpsWithRunner(repoPath string, runner git.Runner) *Ops {
	return &Ops{
		repoPath: repoPath,
		git:      runner,
		debugLog: func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (o *Ops) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		o.debugLog = fn
	}
}

// RepoPath returns the repository path for these operations.
func (o *Ops) RepoPath() string {
	return o.repoPath
}

// resolvePath resolves a path against the repository root.
func (o *Ops) resolvePath(path string) string {
	if filepath.IsAbs(path) || o.repoPath == "" {
		return path
	}
	return filepath.Join(o.repoPath, path)
}

// ReadCurrentFile returns the entire contents of the file as it exists in
// the working tree. On any error it returns an empty string and a failure
// Result.
func (o *Ops) ReadCurrentFile(path string) (string, Result) {
	content, err := os.ReadFile(o.resolvePath(path))
	if err != nil {
		o.debugLog("[fileops] read %s: %v", path, err)
		return "", failf("read %s: %v", path, err)
	}
	return string(content), ok()
}

// ReadHeadFile returns the entire contents of the file as recorded at HEAD,
// via the injected git runner. On any error it returns an empty string and a
// failure Result.
func (o *Ops) ReadHeadFile(path string) (string, Result) {
	content, err := o.git.ShowFile("HEAD", path)
	if err != nil {
		o.debugLog("[fileops] read %s from HEAD: %v", path, err)
		return "", failf("read %s from HEAD: %v", path, err)
	}
	return content, ok()
}

// DeleteFile removes the file at the given path. Only regular files are
// deleted; missing paths and directories yield a failure Result and leave
// the filesystem unchanged.
func (o *Ops) DeleteFile(path string) Result {
	full := o.resolvePath(path)

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		o.debugLog("[fileops] delete %s: not a file or does not exist", path)
		return failf("path %s is not a file or does not exist", path)
	}

	if err := os.Remove(full); err != nil {
		o.debugLog("[fileops] delete %s: %v", path, err)
		return failf("delete %s: %v", path, err)
	}
	return ok()
}

// ReplaceInFile rewrites the file with every occurrence of original replaced
// by replacement. When original is absent the file is left untouched and a
// clean no-op Result is returned. The write is a full-file rewrite, not
// atomic, with no backup of the prior version.
func (o *Ops) ReplaceInFile(path, original, replacement string) Result {
	full := o.resolvePath(path)

	content, err := os.ReadFile(full)
	if err != nil {
		o.debugLog("[fileops] replace in %s: %v", path, err)
		return failf("replace in %s: %v", path, err)
	}

	if !strings.Contains(string(content), original) {
		return noop()
	}

	newContent := strings.ReplaceAll(string(content), original, replacement)
	if err := os.WriteFile(full, []byte(newContent), 0644); err != nil {
		o.debugLog("[fileops] replace in %s: %v", path, err)
		return failf("replace in %s: %v", path, err)
	}
	return ok()
}

// ApplyPatch applies the given patch to the file at the given path.
//
// Two payload formats are supported. A pseudo-patch (leading "*** Begin
// Patch" sentinel) is applied manually: a Delete File directive removes the
// target, an Update File directive splices the patch's added lines over the
// file's conflict-marker blocks. Anything else is treated as a standard
// patch, written to a temporary sidecar file and applied with git apply; the
// sidecar is removed whether or not the apply succeeds.
func (o *Ops) ApplyPatch(path, patch string) Result {
	if isPseudoPatch(patch) {
		o.debugLog("[fileops] pseudo-patch detected for %s, applying manually", path)
		return o.applyPseudoPatch(path, patch)
	}

	full := o.resolvePath(path)
	sidecar := sidecarPath(full)

	if err := os.WriteFile(sidecar, []byte(patch), 0644); err != nil {
		o.debugLog("[fileops] write sidecar for %s: %v", path, err)
		return failf("write patch file for %s: %v", path, err)
	}

	applyErr := o.git.ApplyPatchFile(sidecar)
	// Sidecar removal is unconditional: the temp file must not outlive the
	// call even when git apply fails.
	_ = os.Remove(sidecar)

	if applyErr != nil {
		o.debugLog("[fileops] git apply failed for %s: %v", path, applyErr)
		return failf("git apply failed: %v", applyErr)
	}
	return ok()
}

// applyPseudoPatch applies a pseudo-patch payload to the target file.
func (o *Ops) applyPseudoPatch(path, patch string) Result {
	if _, isDelete := pseudoPatchDeleteTarget(patch); isDelete {
		if err := os.Remove(o.resolvePath(path)); err != nil {
			o.debugLog("[fileops] delete %s via pseudo-patch: %v", path, err)
			return failf("delete %s: %v", path, err)
		}
		o.debugLog("[fileops] deleted %s via pseudo-patch", path)
		return ok()
	}

	if _, isUpdate := pseudoPatchUpdateTarget(patch); !isUpdate {
		o.debugLog("[fileops] unsupported pseudo-patch type for %s", path)
		return failf("unsupported pseudo-patch type")
	}

	diffLines, found := extractDiffLines(patch)
	if !found {
		o.debugLog("[fileops] no diff block found in pseudo-patch for %s", path)
		return failf("no diff block found in pseudo-patch")
	}

	full := o.resolvePath(path)
	content, err := os.ReadFile(full)
	if err != nil {
		o.debugLog("[fileops] read %s: %v", path, err)
		return failf("read %s: %v", path, err)
	}

	newContent := spliceConflicts(string(content), diffLines)

	if err := os.WriteFile(full, []byte(newContent), 0644); err != nil {
		o.debugLog("[fileops] write %s: %v", path, err)
		return failf("write %s: %v", path, err)
	}
	o.debugLog("[fileops] applied pseudo-patch to %s", path)
	return ok()
}

// sidecarPath returns the temporary patch file path for a target: the target
// path with its extension replaced by .patch.
func sidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".patch"
}
