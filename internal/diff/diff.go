package diff

import "strings"

// Kind classifies a line in a computed diff.
type Kind int

const (
	Context Kind = iota
	Added
	Removed
)

// Line is a single row of a line diff. Number is the line's position in the
// new file for Context and Added rows, and in the old file for Removed rows.
type Line struct {
	Kind   Kind
	Number int
	Text   string
}

// Compute returns the line-level edit script between oldText and newText.
// Both texts are split on "\n" with no limit, so a trailing newline produces
// a final empty line. Numbering starts at startLine on both sides, which lets
// callers diff a region in the middle of a file.
func Compute(oldText, newText string, startLine int) []Line {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	n, m := len(oldLines), len(newLines)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldLines[i] == newLines[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var result []Line
	i, j := 0, 0
	oldNum, newNum := startLine, startLine

	for i < n || j < m {
		switch {
		case i < n && j < m && oldLines[i] == newLines[j]:
			result = append(result, Line{Context, newNum, oldLines[i]})
			i++
			j++
			oldNum++
			newNum++
		case i < n && (j >= m || lcs[i+1][j] >= lcs[i][j+1]):
			// Ties prefer the removal.
			result = append(result, Line{Removed, oldNum, oldLines[i]})
			i++
			oldNum++
		default:
			result = append(result, Line{Added, newNum, newLines[j]})
			j++
			newNum++
		}
	}

	return result
}

// Stats counts added and removed lines in a diff.
func Stats(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Kind {
		case Added:
			added++
		case Removed:
			removed++
		}
	}
	return added, removed
}
