package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
)

// maxDirFiles caps how many files a directory reference inlines.
const maxDirFiles = 20

var pickerSkipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// fileCompleter implements readline.AutoCompleter for @ file references.
type fileCompleter struct {
	workingDir string
}

func newFileCompleter(workingDir string) *fileCompleter {
	return &fileCompleter{workingDir: workingDir}
}

// Do completes the path fragment after the last @ before the cursor.
func (f *fileCompleter) Do(line []rune, pos int) ([][]rune, int) {
	typed := string(line[:pos])
	at := strings.LastIndex(typed, "@")
	if at == -1 {
		return nil, 0
	}
	prefix := typed[at+1:]

	entries, err := listProjectFiles(f.workingDir, true)
	if err != nil {
		return nil, 0
	}

	var candidates [][]rune
	lowered := strings.ToLower(prefix)
	for _, entry := range entries {
		if prefix == "" || strings.HasPrefix(strings.ToLower(entry), lowered) {
			candidates = append(candidates, []rune(entry[len(prefix):]))
		}
	}
	return candidates, len(prefix)
}

// listProjectFiles walks the project, skipping hidden and dependency
// directories. Directories get a trailing slash when includeDirs is set.
func listProjectFiles(dir string, includeDirs bool) ([]string, error) {
	var items []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() && pickerSkipDirs[name] {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if includeDirs {
				items = append(items, rel+"/")
			}
			return nil
		}
		items = append(items, rel)
		return nil
	})
	return items, err
}

// pickFile opens a fuzzy-search picker over project files.
func pickFile(workingDir string) (string, error) {
	files, err := listProjectFiles(workingDir, false)
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no files found in %s", workingDir)
	}

	prompt := promptui.Select{
		Label: "Select a file",
		Items: files,
		Size:  20,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(files[index]), strings.ToLower(input))
		},
		StartInSearchMode: true,
		HideSelected:      true,
	}
	_, result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return result, nil
}

// expandFileReferences replaces @path tokens with fenced file contents.
// A bare @ at the end of the message opens the picker; @dir inlines the
// directory's files. Tokens that do not name an existing path stay as
// written, so addresses like user@host pass through untouched.
func expandFileReferences(message, workingDir string) (string, error) {
	parts := strings.Split(message, "@")
	if len(parts) == 1 {
		return message, nil
	}

	var sb strings.Builder
	sb.WriteString(parts[0])

	for _, part := range parts[1:] {
		if part == "" {
			picked, err := pickFile(workingDir)
			if err != nil {
				return "", err
			}
			block, err := renderReference(picked, workingDir)
			if err != nil {
				return "", err
			}
			sb.WriteString(block)
			continue
		}

		if part[0] == ' ' || part[0] == '\t' {
			sb.WriteString("@")
			sb.WriteString(part)
			continue
		}

		ref, rest := part, ""
		if idx := strings.IndexAny(part, " \t\n"); idx != -1 {
			ref, rest = part[:idx], part[idx:]
		}

		if _, err := os.Stat(filepath.Join(workingDir, ref)); err != nil {
			sb.WriteString("@")
			sb.WriteString(part)
			continue
		}

		block, err := renderReference(ref, workingDir)
		if err != nil {
			return "", err
		}
		sb.WriteString(block)
		sb.WriteString(rest)
	}

	return sb.String(), nil
}

func renderReference(ref, workingDir string) (string, error) {
	full := filepath.Join(workingDir, ref)
	info, err := os.Stat(full)
	if err != nil {
		return "", fmt.Errorf("failed to access %s: %w", ref, err)
	}
	if !info.IsDir() {
		return renderFileBlock(ref, workingDir)
	}

	files, err := listProjectFiles(full, false)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", ref, err)
	}
	if len(files) > maxDirFiles {
		files = files[:maxDirFiles]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n\n**Directory: `%s`** (%d files)\n", ref, len(files)))
	for _, f := range files {
		block, err := renderFileBlock(filepath.Join(ref, f), workingDir)
		if err != nil {
			continue
		}
		sb.WriteString(block)
	}
	return sb.String(), nil
}

func renderFileBlock(ref, workingDir string) (string, error) {
	content, err := os.ReadFile(filepath.Join(workingDir, ref))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	lang := strings.TrimPrefix(filepath.Ext(ref), ".")
	return fmt.Sprintf("\n\n**File: `%s`**\n```%s\n%s\n```", ref, lang, string(content)), nil
}
