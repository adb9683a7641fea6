// Package conflict provides conflict-marker scanning and presentation.
package conflict

import (
	"bufio"
	"strings"
)

// Region represents a single conflict-marker block inside a file.
type Region struct {
	// StartLine is the 1-indexed line of the <<<<<<< marker.
	StartLine int
	// EndLine is the 1-indexed line of the >>>>>>> marker.
	EndLine int
	// Ours is the content between <<<<<<< and =======.
	Ours string
	// Theirs is the content between ======= and >>>>>>>.
	Theirs string
	// Context holds up to three lines preceding the block.
	Context string
}

// FileConflicts pairs a file path with its conflict regions.
type FileConflicts struct {
	Path    string
	Regions []Region
}

// Scan parses git conflict markers in the given content and returns the
// conflict regions in file order. Markers look like:
//
//	<<<<<<< HEAD
//	ours
//	=======
//	theirs
//	>>>>>>> branch-name
func Scan(content string) []Region {
	var regions []Region
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	inConflict := false
	afterSeparator := false
	var current Region
	var ours, theirs []string
	var before []string

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "<<<<<<<"):
			inConflict = true
			afterSeparator = false
			current = Region{StartLine: lineNum}
			contextStart := len(before) - 3
			if contextStart < 0 {
				contextStart = 0
			}
			current.Context = strings.Join(before[contextStart:], "\n")
			ours, theirs = nil, nil

		case inConflict && strings.HasPrefix(line, "======="):
			afterSeparator = true

		case inConflict && strings.HasPrefix(line, ">>>>>>>"):
			current.EndLine = lineNum
			current.Ours = strings.Join(ours, "\n")
			current.Theirs = strings.Join(theirs, "\n")
			regions = append(regions, current)
			inConflict = false
			before = nil

		case inConflict:
			if afterSeparator {
				theirs = append(theirs, line)
			} else {
				ours = append(ours, line)
			}

		default:
			before = append(before, line)
			if len(before) > 10 {
				before = before[1:]
			}
		}
	}

	return regions
}

// HasMarkers reports whether the content still contains an unresolved
// conflict-marker block.
func HasMarkers(content string) bool {
	return len(Scan(content)) > 0
}
