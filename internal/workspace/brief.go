package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RenderBrief formats a brief as the markdown body of TARAGENT.md.
func RenderBrief(b *Brief) string {
	var sb strings.Builder

	sb.WriteString("# Project Brief\n\n")
	sb.WriteString("Generated by taragent. Edit freely; this file is added to the agent's system prompt.\n\n")
	sb.WriteString(fmt.Sprintf("- Project type: %s\n", b.ProjectType))
	if b.ModuleName != "" {
		sb.WriteString(fmt.Sprintf("- Module: %s\n", b.ModuleName))
	}
	sb.WriteString(fmt.Sprintf("- Size: %s in %s\n", plural(b.FileCount, "file"), plural(b.DirCount, "directory")))
	if b.Git != nil {
		state := "clean"
		if b.Git.Dirty {
			state = "dirty"
		}
		sb.WriteString(fmt.Sprintf("- Git: branch %s (%s)", b.Git.Branch, state))
		if b.Git.LastCommit != "" {
			sb.WriteString(fmt.Sprintf(", last commit %s", b.Git.LastCommit))
		}
		sb.WriteString("\n")
	}

	if len(b.Languages) > 0 {
		sb.WriteString("\n## Languages\n\n")
		for _, l := range b.Languages {
			sb.WriteString(fmt.Sprintf("- %s: %s (%d%%)\n", l.Name, plural(l.Files, "file"), l.Percent))
		}
	}

	if len(b.KeyFiles) > 0 {
		sb.WriteString("\n## Key files\n\n")
		for _, f := range b.KeyFiles {
			sb.WriteString("- " + f + "\n")
		}
	}

	if len(b.BuildTargets) > 0 {
		sb.WriteString("\n## Make targets\n\n")
		sb.WriteString(strings.Join(b.BuildTargets, ", ") + "\n")
	}

	return sb.String()
}

// WriteBrief renders the brief into dir/TARAGENT.md and returns the path.
func WriteBrief(dir string, b *Brief) (string, error) {
	path := filepath.Join(dir, ContextFileName)
	if err := os.WriteFile(path, []byte(RenderBrief(b)), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", ContextFileName, err)
	}
	return path, nil
}

// Load reads dir/TARAGENT.md. The second return is false when the file is
// missing or blank.
func Load(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, ContextFileName))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return "", false
	}
	return string(data), true
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	if strings.HasSuffix(unit, "y") {
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(unit, "y"))
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
