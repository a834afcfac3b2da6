package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const maxKeyFiles = 10

// excludeDirs are never descended into during analysis.
var excludeDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"coverage":     true,
	"tmp":          true,
}

// excludePatterns filter out lockfiles, build artifacts and binary assets.
// Patterns match the slash-separated path relative to the analyzed root.
var excludePatterns = []string{
	"**/*.lock", "**/go.sum", "**/package-lock.json",
	"**/*.log", "**/*.tmp",
	"**/*.min.js", "**/*.min.css", "**/*.map",
	"**/*.jpg", "**/*.jpeg", "**/*.png", "**/*.gif", "**/*.svg", "**/*.ico",
	"**/*.pdf", "**/*.zip", "**/*.tar", "**/*.gz",
	"**/*.exe", "**/*.dll", "**/*.so", "**/*.dylib",
	"**/*.pyc", "**/*.pyo", "**/*.class", "**/*.jar",
}

// keyFileScores ranks files worth surfacing in the brief. Higher wins.
var keyFileScores = map[string]int{
	"go.mod":             10,
	"package.json":       10,
	"Cargo.toml":         10,
	"pyproject.toml":     10,
	"main.go":            9,
	"main.py":            9,
	"main.rs":            9,
	"index.js":           9,
	"index.ts":           9,
	"README.md":          8,
	"app.js":             8,
	"app.py":             8,
	"Makefile":           7,
	"Dockerfile":         7,
	"README":             7,
	"CMakeLists.txt":     6,
	"docker-compose.yml": 6,
	"requirements.txt":   6,
	"setup.py":           6,
	"tsconfig.json":      5,
}

// Analyze inspects dir and assembles a project brief: type and module name
// from manifests, language shares by extension, notable files, Makefile
// targets and git state.
func Analyze(dir string) (*Brief, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	brief := &Brief{ProjectType: "Unknown"}
	detectManifests(abs, brief)
	brief.BuildTargets = makefileTargets(filepath.Join(abs, "Makefile"))
	brief.Git = gitInfo(abs)

	type keyFile struct {
		path  string
		score int
	}
	var keys []keyFile
	langFiles := make(map[string]int)

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path == abs {
				return nil
			}
			if strings.HasPrefix(name, ".") || excludeDirs[name] {
				return filepath.SkipDir
			}
			brief.DirCount++
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matchesExcludePattern(rel) {
			return nil
		}
		brief.FileCount++
		if score, ok := keyFileScores[name]; ok {
			keys = append(keys, keyFile{path: rel, score: score})
		}
		if lang := languageForExt(filepath.Ext(name)); lang != "" {
			langFiles[lang]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].score != keys[j].score {
			return keys[i].score > keys[j].score
		}
		return keys[i].path < keys[j].path
	})
	for _, k := range keys {
		if len(brief.KeyFiles) >= maxKeyFiles {
			break
		}
		brief.KeyFiles = append(brief.KeyFiles, k.path)
	}

	brief.Languages = languageShares(langFiles)

	return brief, nil
}

func matchesExcludePattern(rel string) bool {
	for _, pattern := range excludePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// detectManifests determines project type and module name. When several
// manifests are present the first match in this order wins.
func detectManifests(dir string, b *Brief) {
	switch {
	case fileExists(filepath.Join(dir, "go.mod")):
		b.ProjectType = "Go"
		b.ModuleName = goModuleName(filepath.Join(dir, "go.mod"))
	case fileExists(filepath.Join(dir, "Cargo.toml")):
		b.ProjectType = "Rust"
		b.ModuleName = tomlName(filepath.Join(dir, "Cargo.toml"), "package")
	case fileExists(filepath.Join(dir, "pyproject.toml")):
		b.ProjectType = "Python"
		b.ModuleName = pyprojectName(filepath.Join(dir, "pyproject.toml"))
	case fileExists(filepath.Join(dir, "requirements.txt")),
		fileExists(filepath.Join(dir, "setup.py")):
		b.ProjectType = "Python"
	case fileExists(filepath.Join(dir, "package.json")):
		b.ProjectType = "Node.js"
		b.ModuleName = packageJSONName(filepath.Join(dir, "package.json"))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func goModuleName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

func packageJSONName(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return pkg.Name
}

// tomlName scans for `name = "..."` inside the named [section]. A full TOML
// parser is overkill for pulling a single key out of a manifest.
func tomlName(path, section string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	inSection := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "[") {
			inSection = strings.Trim(line, "[]") == section
			continue
		}
		if !inSection {
			continue
		}
		rest, ok := strings.CutPrefix(line, "name")
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest, ok = strings.CutPrefix(rest, "="); ok {
			return strings.Trim(strings.TrimSpace(rest), `"'`)
		}
	}
	return ""
}

func pyprojectName(path string) string {
	if name := tomlName(path, "project"); name != "" {
		return name
	}
	return tomlName(path, "tool.poetry")
}

// makeTargetRe matches rule lines like "build: deps" while rejecting
// variable assignments ("FOO := bar"), recipes and special targets.
var makeTargetRe = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_./-]*)\s*:([^=]|$)`)

func makefileTargets(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var targets []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		m := makeTargetRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, name)
	}
	return targets
}

// gitInfo collects branch, dirty state and last commit. Returns nil when the
// directory is not a git repository or git is unavailable.
func gitInfo(dir string) *GitInfo {
	branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil
	}
	info := &GitInfo{Branch: branch}
	if status, err := gitOutput(dir, "status", "--porcelain"); err == nil {
		info.Dirty = status != ""
	}
	if last, err := gitOutput(dir, "log", "-1", "--pretty=format:%h %s"); err == nil {
		info.LastCommit = last
	}
	return info
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func languageShares(langFiles map[string]int) []Language {
	total := 0
	for _, n := range langFiles {
		total += n
	}
	if total == 0 {
		return nil
	}
	langs := make([]Language, 0, len(langFiles))
	for name, n := range langFiles {
		langs = append(langs, Language{Name: name, Files: n, Percent: n * 100 / total})
	}
	sort.Slice(langs, func(i, j int) bool {
		if langs[i].Files != langs[j].Files {
			return langs[i].Files > langs[j].Files
		}
		return langs[i].Name < langs[j].Name
	})
	return langs
}

func languageForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".go":
		return "Go"
	case ".js", ".jsx":
		return "JavaScript"
	case ".ts", ".tsx":
		return "TypeScript"
	case ".py":
		return "Python"
	case ".rs":
		return "Rust"
	case ".java":
		return "Java"
	case ".c", ".h":
		return "C"
	case ".cpp", ".cc", ".hpp":
		return "C++"
	case ".rb":
		return "Ruby"
	case ".php":
		return "PHP"
	case ".cs":
		return "C#"
	case ".swift":
		return "Swift"
	case ".kt":
		return "Kotlin"
	case ".scala":
		return "Scala"
	case ".sh", ".bash":
		return "Shell"
	case ".sql":
		return "SQL"
	case ".proto":
		return "Protobuf"
	case ".lua":
		return "Lua"
	case ".zig":
		return "Zig"
	default:
		return ""
	}
}
