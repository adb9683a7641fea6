package resolver

import (
	"fmt"
	"strings"
)

// systemPrompt is the base system prompt for the resolution agent.
const systemPrompt = `You are a dedicated merge conflict resolver working inside a CI job.

You are given a repository whose working tree contains unresolved merge
conflicts. Your only job is to resolve them.

Rules:
- Read both sides of every conflict before deciding. Use read_file for the
  working tree (with conflict markers) and read_head_file for the pre-merge
  version at HEAD.
- Preserve the intent of BOTH branches when they are compatible. When they
  are incompatible, keep the version that maintains correctness.
- Never simply pick one side without reading both.
- Remove every conflict marker (<<<<<<<, =======, >>>>>>>) from files you
  resolve.
- Do not touch files that are not in conflict.
- When every conflict is resolved, confirm with list_conflicts and then stop.`

// buildUserPrompt builds the initial user message for a resolution run.
func buildUserPrompt(targetBranch string, conflicts []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Merge Conflict Resolution\n\n")
	fmt.Fprintf(&b, "The merge into branch %s stopped with %d conflicted file(s):\n\n", targetBranch, len(conflicts))
	for _, f := range conflicts {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	b.WriteString(`
## Your Mission
1. Understand intent: read the working-tree and HEAD versions of each file
2. Merge: produce unified content that preserves both intents when compatible
3. Resolve: if changes are incompatible, choose the approach that maintains correctness
4. Verify: call list_conflicts to confirm nothing remains unresolved

Apply changes with replace_in_file or apply_patch. Use delete_file only when
a file should not survive the merge.
`)

	return b.String()
}
