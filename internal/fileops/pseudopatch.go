package fileops

import (
	"regexp"
	"strings"
)

// Pseudo-patch sentinels. The format is:
//
//	*** Begin Patch
//	*** Update File: path/to/file
//	@@ hunk header
//	-old line
//	+new line
//	*** End Patch
//
// A "*** Delete File: <path>" directive takes precedence over the body.
const beginPatchSentinel = "*** Begin Patch"

var (
	deleteFileRe = regexp.MustCompile(`\*\*\* Delete File: (.+)`)
	updateFileRe = regexp.MustCompile(`\*\*\* Update File: (.+)`)
	diffBlockRe  = regexp.MustCompile(`(?s)@@.*?\*\*\* End Patch`)
)

// isPseudoPatch reports whether the payload carries the pseudo-patch header.
func isPseudoPatch(patch string) bool {
	return strings.HasPrefix(strings.TrimSpace(patch), beginPatchSentinel)
}

// pseudoPatchDeleteTarget extracts the path of a Delete File directive.
func pseudoPatchDeleteTarget(patch string) (string, bool) {
	m := deleteFileRe.FindStringSubmatch(patch)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// pseudoPatchUpdateTarget extracts the path of an Update File directive.
func pseudoPatchUpdateTarget(patch string) (string, bool) {
	m := updateFileRe.FindStringSubmatch(patch)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// extractDiffLines returns the lines of the diff block, from the first @@
// hunk marker through the *** End Patch sentinel. Returns false when the
// patch has no such block.
func extractDiffLines(patch string) ([]string, bool) {
	block := diffBlockRe.FindString(patch)
	if block == "" {
		return nil, false
	}
	return strings.Split(block, "\n"), true
}

// hasConflictToken reports whether the diff removes a conflict-marker block,
// i.e. contains a line starting with "-<<<<<<<".
func hasConflictToken(diffLines []string) bool {
	for _, l := range diffLines {
		if strings.HasPrefix(l, "-<<<<<<<") {
			return true
		}
	}
	return false
}

// spliceConflicts walks the file content line by line. Each conflict-marker
// block (a line whose stripped content starts with "<<<<<<<" through the
// first subsequent ">>>>>>>" line) is discarded and replaced with every
// "+"-prefixed line from the diff block. Lines outside conflict blocks pass
// through unchanged.
//
// The diff's added lines are spliced verbatim at each conflict block, in
// file order. Multiple non-contiguous conflict blocks are NOT reconciled
// against multiple hunks; every block receives the same added lines. This
// mirrors the single-hunk contract of the format.
func spliceConflicts(content string, diffLines []string) string {
	if !hasConflictToken(diffLines) {
		return content
	}

	var added []string
	for _, l := range diffLines {
		if strings.HasPrefix(l, "+") {
			added = append(added, l[1:])
		}
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	i := 0
	for i < len(lines) {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "<<<<<<<") {
			// Discard through the closing marker.
			for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), ">>>>>>>") {
				i++
			}
			i++ // skip the >>>>>>> line itself
			out = append(out, added...)
			continue
		}
		out = append(out, lines[i])
		i++
	}

	return strings.Join(out, "\n")
}
