package diff

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ansiReset   = "\033[0m"
	ansiDim     = "\033[2m"
	ansiRedBg   = "\033[41m\033[37m"
	ansiGreenBg = "\033[42m\033[30m"
)

// contextLines is how many unchanged lines are shown around a change.
const contextLines = 3

// Render returns an ANSI-colored diff between oldText and newText, preceded
// by a summary line. startLine is the 1-based position of the changed region
// in the file. Unchanged runs beyond the context window are trimmed, with a
// trailing ellipsis row when lines after the last change were cut.
func Render(oldText, newText string, startLine int) string {
	lines := Compute(oldText, newText, startLine)
	added, removed := Stats(lines)

	var sb strings.Builder
	sb.WriteString(ansiDim)
	sb.WriteString("Added " + plural(added, "line") + ", removed " + plural(removed, "line"))
	sb.WriteString(ansiReset)
	sb.WriteString("\n")

	firstChange, lastChange := -1, -1
	for i, l := range lines {
		if l.Kind != Context {
			if firstChange == -1 {
				firstChange = i
			}
			lastChange = i
		}
	}
	if firstChange == -1 {
		return sb.String()
	}

	start := firstChange - contextLines
	if start < 0 {
		start = 0
	}
	end := lastChange + contextLines
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	numWidth := 3
	for i := start; i <= end; i++ {
		if w := len(strconv.Itoa(lines[i].Number)); w > numWidth {
			numWidth = w
		}
	}

	for i := start; i <= end; i++ {
		l := lines[i]
		num := fmt.Sprintf("%*d", numWidth, l.Number)
		switch l.Kind {
		case Context:
			sb.WriteString(ansiDim + "  " + num + "  " + l.Text + ansiReset + "\n")
		case Removed:
			sb.WriteString(ansiRedBg + "  " + num + " -" + l.Text + ansiReset + "\n")
		case Added:
			sb.WriteString(ansiGreenBg + "  " + num + " +" + l.Text + ansiReset + "\n")
		}
	}

	if end < len(lines)-1 {
		sb.WriteString(ansiDim + "  " + strings.Repeat(" ", numWidth) + "  ..." + ansiReset + "\n")
	}

	return sb.String()
}

// RenderNewFile returns the one-line summary shown when a file is created
// rather than modified.
func RenderNewFile(content string) string {
	lineCount := len(strings.Split(content, "\n"))
	return ansiDim + plural(lineCount, "line") + fmt.Sprintf(", %d bytes", len(content)) + ansiReset + "\n"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
