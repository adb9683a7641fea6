package conflict

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	markerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	oursStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	theirsStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pathStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

// FormatSummary creates a human-readable summary of conflicted files.
func FormatSummary(files []FileConflicts) string {
	if len(files) == 0 {
		return "No conflicts to display"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Conflicting files: %d\n", len(files)))
	for i, f := range files {
		sb.WriteString(fmt.Sprintf("  %d. %s (%d conflict regions)\n", i+1, f.Path, len(f.Regions)))
	}
	return sb.String()
}

// FormatRegions renders the conflict regions of a file with styling for
// terminal display.
func FormatRegions(f FileConflicts) string {
	var sb strings.Builder
	sb.WriteString(pathStyle.Render(f.Path) + "\n")

	if len(f.Regions) == 0 {
		sb.WriteString("  (no conflict markers in working tree)\n")
		return sb.String()
	}

	for i, r := range f.Regions {
		sb.WriteString(fmt.Sprintf("\nRegion %d (lines %d-%d):\n", i+1, r.StartLine, r.EndLine))
		if r.Context != "" {
			sb.WriteString(contextStyle.Render(indent(r.Context)) + "\n")
		}
		sb.WriteString(markerStyle.Render("<<<<<<< ours") + "\n")
		sb.WriteString(oursStyle.Render(indent(r.Ours)) + "\n")
		sb.WriteString(markerStyle.Render("=======") + "\n")
		sb.WriteString(theirsStyle.Render(indent(r.Theirs)) + "\n")
		sb.WriteString(markerStyle.Render(">>>>>>> theirs") + "\n")
	}
	return sb.String()
}

func indent(s string) string {
	if s == "" {
		return "  (empty)"
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
