package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	maxGrepMatches   = 100
	maxGrepLineChars = 500
	maxFindResults   = 1000
)

// skipDirs are never descended into during searches.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// GrepTool searches file contents. It spawns the system grep when available
// and falls back to a pure-Go walk otherwise, so search works the same on
// minimal images.
type GrepTool struct{}

func (t *GrepTool) Name() string { return "grep" }

func (t *GrepTool) Description() string {
	return "Search file contents recursively for a pattern. Returns matching lines " +
		"as path:line:text."
}

func (t *GrepTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Text or regular expression to search for",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Directory to search (default: working directory)",
			},
		},
		"required": []string{"pattern"},
	}
}

func (t *GrepTool) Execute(args map[string]any, workingDir string) (string, error) {
	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return "", fmt.Errorf("pattern parameter is required")
	}

	searchDir := workingDir
	if dir, ok := args["path"].(string); ok && dir != "" {
		searchDir = resolvePath(dir, workingDir)
	}

	var matches []string
	var err error
	if _, lookErr := exec.LookPath("grep"); lookErr == nil {
		matches, err = grepWithCommand(pattern, searchDir)
	} else {
		matches, err = grepWithWalk(pattern, searchDir)
	}
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No matches found for pattern: %s", pattern), nil
	}

	truncated := false
	if len(matches) > maxGrepMatches {
		matches = matches[:maxGrepMatches]
		truncated = true
	}
	for i, m := range matches {
		if len(m) > maxGrepLineChars {
			matches[i] = m[:maxGrepLineChars] + "..."
		}
	}

	result := strings.Join(matches, "\n")
	if truncated {
		result += fmt.Sprintf("\n[Results truncated at %d matches]", maxGrepMatches)
	}
	return result, nil
}

func grepWithCommand(pattern, dir string) ([]string, error) {
	cmd := exec.Command("grep", "-rn", "--binary-files=without-match", "--", pattern, ".")
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Exit code 1 means no matches, which is not a failure
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("grep failed: %w\n%s", err, stderr.String())
	}

	var matches []string
	for _, line := range strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		matches = append(matches, strings.TrimPrefix(line, "./"))
	}
	return matches, nil
}

func grepWithWalk(pattern, dir string) ([]string, error) {
	re, reErr := regexp.Compile(pattern)

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(matches) > maxGrepMatches {
			return filepath.SkipAll
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil || bytes.IndexByte(content, 0) >= 0 {
			return nil
		}

		relPath, _ := filepath.Rel(dir, path)
		for i, line := range strings.Split(string(content), "\n") {
			hit := false
			if reErr == nil {
				hit = re.MatchString(line)
			} else {
				hit = strings.Contains(line, pattern)
			}
			if hit {
				matches = append(matches, fmt.Sprintf("%s:%d:%s", relPath, i+1, line))
				if len(matches) > maxGrepMatches {
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return matches, nil
}

// FindTool locates files by glob pattern. Patterns without a path separator
// match against file names anywhere in the tree; patterns with one match
// against the path relative to the search directory, with ** crossing
// directory boundaries.
type FindTool struct{}

func (t *FindTool) Name() string { return "find" }

func (t *FindTool) Description() string {
	return "Find files by glob pattern, e.g. *.go or cmd/**/*.json. Returns paths " +
		"relative to the search directory."
}

func (t *FindTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{
				"type":        "string",
				"description": "Glob pattern; ** matches across directories",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Directory to search (default: working directory)",
			},
		},
		"required": []string{"pattern"},
	}
}

func (t *FindTool) Execute(args map[string]any, workingDir string) (string, error) {
	pattern, ok := args["pattern"].(string)
	if !ok || pattern == "" {
		return "", fmt.Errorf("pattern parameter is required")
	}
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	searchDir := workingDir
	if dir, ok := args["path"].(string); ok && dir != "" {
		searchDir = resolvePath(dir, workingDir)
	}
	baseOnly := !strings.Contains(pattern, "/")

	var found []string
	truncated := false
	err := filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if len(found) >= maxFindResults {
			truncated = true
			return filepath.SkipAll
		}

		relPath, relErr := filepath.Rel(searchDir, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		matched := false
		if baseOnly {
			matched, _ = doublestar.Match(pattern, d.Name())
		} else {
			matched, _ = doublestar.Match(pattern, relPath)
		}
		if matched {
			found = append(found, relPath)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("find failed: %w", err)
	}

	if len(found) == 0 {
		return fmt.Sprintf("No files found matching pattern: %s", pattern), nil
	}

	result := strings.Join(found, "\n")
	if truncated {
		result += fmt.Sprintf("\n[Results truncated at %d entries]", maxFindResults)
	}
	return result, nil
}
