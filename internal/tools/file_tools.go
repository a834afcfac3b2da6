package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tara-vision/taragent/internal/agent"
	"github.com/tara-vision/taragent/internal/diff"
)

const defaultReadLimit = 2000

// ReadTool returns file content with line numbers, windowed by offset and
// limit so large files do not flood the context.
type ReadTool struct{}

func (t *ReadTool) Name() string { return "read" }

func (t *ReadTool) Description() string {
	return "Read a file from the filesystem. Returns the content with line numbers. " +
		"Use offset and limit to read a specific window of a large file."
}

func (t *ReadTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file, absolute or relative to the working directory",
			},
			"offset": map[string]any{
				"type":        "integer",
				"description": "1-based line number to start reading from (default 1)",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of lines to return (default 2000)",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadTool) Execute(args map[string]any, workingDir string) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path parameter is required")
	}

	content, err := os.ReadFile(resolvePath(path, workingDir))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	// A trailing newline yields one empty final element; drop it from display
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total := len(lines)

	offset, hasOffset := intArg(args, "offset")
	if !hasOffset || offset < 1 {
		offset = 1
	}
	if offset > total {
		return "", fmt.Errorf("offset %d is beyond the end of the file (%d lines)", offset, total)
	}

	limit, hasLimit := intArg(args, "limit")
	if !hasLimit || limit < 1 {
		limit = defaultReadLimit
	}

	end := offset + limit - 1
	if end > total {
		end = total
	}

	var result strings.Builder
	for i := offset; i <= end; i++ {
		result.WriteString(fmt.Sprintf("%d\t%s\n", i, lines[i-1]))
	}
	if offset > 1 || end < total {
		result.WriteString(fmt.Sprintf("\n[Truncated: showing lines %d-%d of %d total]", offset, end, total))
	}

	return result.String(), nil
}

// WriteTool creates or overwrites a file. The result carries a display diff
// after the separator: a full-file diff when overwriting, a size summary for
// a new file.
type WriteTool struct{}

func (t *WriteTool) Name() string { return "write" }

func (t *WriteTool) Description() string {
	return "Write content to a file, creating it and any parent directories if needed. " +
		"Overwrites the existing content entirely. For small changes prefer the edit tool."
}

func (t *WriteTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file, absolute or relative to the working directory",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Full content to write",
			},
		},
		"required": []string{"path", "content"},
	}
}

func (t *WriteTool) Execute(args map[string]any, workingDir string) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path parameter is required")
	}
	content, ok := args["content"].(string)
	if !ok {
		return "", fmt.Errorf("content parameter is required")
	}

	target := resolvePath(path, workingDir)
	oldContent, readErr := os.ReadFile(target)
	existed := readErr == nil

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	var display string
	if existed {
		display = diff.Render(string(oldContent), content, 1)
	} else {
		display = diff.RenderNewFile(content)
	}

	return fmt.Sprintf("Wrote %d bytes to %s%s%s", len(content), path, agent.DiffSeparator, display), nil
}

// EditTool replaces one exact occurrence of old_string with new_string. When
// the exact text is not found it retries ignoring trailing whitespace on each
// line, which absorbs the most common model transcription drift.
type EditTool struct{}

func (t *EditTool) Name() string { return "edit" }

func (t *EditTool) Description() string {
	return "Replace an exact string in a file. The old_string must match exactly one " +
		"location; include surrounding lines to make it unique. Use the read tool first " +
		"to see the current content."
}

func (t *EditTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the file, absolute or relative to the working directory",
			},
			"old_string": map[string]any{
				"type":        "string",
				"description": "Exact text to replace, including indentation",
			},
			"new_string": map[string]any{
				"type":        "string",
				"description": "Replacement text",
			},
		},
		"required": []string{"path", "old_string", "new_string"},
	}
}

func (t *EditTool) Execute(args map[string]any, workingDir string) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", fmt.Errorf("path parameter is required")
	}
	oldString, ok := args["old_string"].(string)
	if !ok {
		return "", fmt.Errorf("old_string parameter is required")
	}
	if oldString == "" {
		return "", fmt.Errorf("old_string cannot be empty; use the write tool to create or rewrite a file")
	}
	newString, ok := args["new_string"].(string)
	if !ok {
		return "", fmt.Errorf("new_string parameter is required")
	}

	target := resolvePath(path, workingDir)
	content, err := os.ReadFile(target)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	fileContent := string(content)

	matched := oldString
	idx := strings.Index(fileContent, oldString)
	if idx >= 0 {
		if strings.Count(fileContent, oldString) > 1 {
			return "", fmt.Errorf("old_string appears multiple times in the file; include more surrounding context to make it unique")
		}
	} else {
		// Exact match failed; retry ignoring trailing whitespace per line
		var ambiguous bool
		idx, matched, ambiguous = matchIgnoringTrailingSpace(fileContent, oldString)
		if ambiguous {
			return "", fmt.Errorf("old_string appears multiple times in the file; include more surrounding context to make it unique")
		}
		if idx < 0 {
			return "", fmt.Errorf("old_string not found in file; make sure it matches the file content exactly, including whitespace")
		}
	}

	newContent := fileContent[:idx] + newString + fileContent[idx+len(matched):]
	if err := os.WriteFile(target, []byte(newContent), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	changeLine := strings.Count(fileContent[:idx], "\n") + 1
	display := diff.Render(matched, newString, changeLine)

	return fmt.Sprintf("Edited %s (change at line %d)%s%s", path, changeLine, agent.DiffSeparator, display), nil
}

// matchIgnoringTrailingSpace looks for old as a block of whole lines whose
// content equals old's lines after stripping trailing whitespace. Returns the
// byte offset and the text actually present in the file; offset -1 means no
// match, ambiguous means more than one.
func matchIgnoringTrailingSpace(content, old string) (int, string, bool) {
	oldLines := strings.Split(old, "\n")
	for len(oldLines) > 0 && strings.TrimRight(oldLines[len(oldLines)-1], " \t") == "" {
		oldLines = oldLines[:len(oldLines)-1]
	}
	if len(oldLines) == 0 {
		return -1, "", false
	}
	for i := range oldLines {
		oldLines[i] = strings.TrimRight(oldLines[i], " \t")
	}

	fileLines := strings.Split(content, "\n")
	matchStart := -1
	for i := 0; i+len(oldLines) <= len(fileLines); i++ {
		found := true
		for j, want := range oldLines {
			if strings.TrimRight(fileLines[i+j], " \t") != want {
				found = false
				break
			}
		}
		if found {
			if matchStart >= 0 {
				return -1, "", true
			}
			matchStart = i
		}
	}
	if matchStart < 0 {
		return -1, "", false
	}

	offset := 0
	for i := 0; i < matchStart; i++ {
		offset += len(fileLines[i]) + 1
	}
	matched := strings.Join(fileLines[matchStart:matchStart+len(oldLines)], "\n")
	return offset, matched, false
}
