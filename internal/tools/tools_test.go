package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tara-vision/taragent/internal/agent"
)

func setupTestDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "taragent-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func TestReadTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	testFile := filepath.Join(dir, "test.txt")
	os.WriteFile(testFile, []byte("alpha\nbeta\ngamma\n"), 0644)

	tool := &ReadTool{}

	// Full read with line numbers
	result, err := tool.Execute(map[string]any{"path": "test.txt"}, dir)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(result, "1\talpha") || !strings.Contains(result, "3\tgamma") {
		t.Errorf("Expected numbered lines, got: %s", result)
	}
	if strings.Contains(result, "Truncated") {
		t.Errorf("Full read must not carry a truncation note: %s", result)
	}

	// Windowed read
	result, err = tool.Execute(map[string]any{
		"path":   "test.txt",
		"offset": float64(2),
		"limit":  float64(1),
	}, dir)
	if err != nil {
		t.Fatalf("windowed read failed: %v", err)
	}
	if !strings.Contains(result, "2\tbeta") {
		t.Errorf("Expected line 2, got: %s", result)
	}
	if strings.Contains(result, "alpha") || strings.Contains(result, "gamma") {
		t.Errorf("Window must exclude other lines: %s", result)
	}
	if !strings.Contains(result, "[Truncated: showing lines 2-2 of 3 total]") {
		t.Errorf("Expected truncation note, got: %s", result)
	}

	// Offset beyond end
	if _, err := tool.Execute(map[string]any{"path": "test.txt", "offset": float64(10)}, dir); err == nil {
		t.Error("Expected error for offset beyond end of file")
	}

	// Missing file
	if _, err := tool.Execute(map[string]any{"path": "missing.txt"}, dir); err == nil {
		t.Error("Expected error for missing file")
	}

	// Missing parameter
	if _, err := tool.Execute(map[string]any{}, dir); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestWriteTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	tool := &WriteTool{}

	// New file carries a size summary after the separator
	result, err := tool.Execute(map[string]any{
		"path":    "new.txt",
		"content": "hello world",
	}, dir)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(result, "Wrote 11 bytes to new.txt") {
		t.Errorf("Unexpected result: %s", result)
	}
	model, display, found := strings.Cut(result, agent.DiffSeparator)
	if !found {
		t.Fatalf("Expected diff separator in result: %s", result)
	}
	if strings.Contains(model, "line") || !strings.Contains(display, "1 line, 11 bytes") {
		t.Errorf("New-file summary must sit after the separator: %q / %q", model, display)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "new.txt"))
	if string(data) != "hello world" {
		t.Errorf("Content mismatch: got %q", string(data))
	}

	// Overwrite carries a full diff
	result, err = tool.Execute(map[string]any{
		"path":    "new.txt",
		"content": "hello there",
	}, dir)
	if err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	_, display, _ = strings.Cut(result, agent.DiffSeparator)
	if !strings.Contains(display, "Added 1 line, removed 1 line") {
		t.Errorf("Expected diff summary, got: %s", display)
	}
	if !strings.Contains(display, "-hello world") || !strings.Contains(display, "+hello there") {
		t.Errorf("Expected diff rows, got: %s", display)
	}

	// Parent directories are created
	if _, err := tool.Execute(map[string]any{
		"path":    filepath.Join("nested", "deep", "file.txt"),
		"content": "nested",
	}, dir); err != nil {
		t.Errorf("write with nested dirs failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested", "deep", "file.txt")); err != nil {
		t.Error("Nested file was not created")
	}
}

func TestEditTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	testFile := filepath.Join(dir, "edit.txt")
	os.WriteFile(testFile, []byte("one\ntwo\nthree\n"), 0644)

	tool := &EditTool{}

	result, err := tool.Execute(map[string]any{
		"path":       "edit.txt",
		"old_string": "two",
		"new_string": "2",
	}, dir)
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if !strings.Contains(result, "Edited edit.txt (change at line 2)") {
		t.Errorf("Unexpected result: %s", result)
	}
	_, display, found := strings.Cut(result, agent.DiffSeparator)
	if !found || !strings.Contains(display, "-two") || !strings.Contains(display, "+2") {
		t.Errorf("Expected region diff after separator: %s", result)
	}

	data, _ := os.ReadFile(testFile)
	if string(data) != "one\n2\nthree\n" {
		t.Errorf("Content mismatch: got %q", string(data))
	}

	// Empty old_string
	if _, err := tool.Execute(map[string]any{
		"path":       "edit.txt",
		"old_string": "",
		"new_string": "x",
	}, dir); err == nil {
		t.Error("Expected error for empty old_string")
	}

	// Not found
	if _, err := tool.Execute(map[string]any{
		"path":       "edit.txt",
		"old_string": "missing",
		"new_string": "x",
	}, dir); err == nil {
		t.Error("Expected error when old_string is absent")
	}

	// Ambiguous match
	os.WriteFile(testFile, []byte("dup\ndup\n"), 0644)
	_, err = tool.Execute(map[string]any{
		"path":       "edit.txt",
		"old_string": "dup",
		"new_string": "x",
	}, dir)
	if err == nil || !strings.Contains(err.Error(), "multiple times") {
		t.Errorf("Expected ambiguity error, got: %v", err)
	}
}

func TestEditToolTrailingWhitespaceFallback(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	testFile := filepath.Join(dir, "code.txt")
	// File lines carry trailing spaces the model will not reproduce
	os.WriteFile(testFile, []byte("func a() {  \n\treturn 1   \n}\n"), 0644)

	tool := &EditTool{}
	result, err := tool.Execute(map[string]any{
		"path":       "code.txt",
		"old_string": "func a() {\n\treturn 1",
		"new_string": "func a() {\n\treturn 2",
	}, dir)
	if err != nil {
		t.Fatalf("fallback edit failed: %v", err)
	}
	if !strings.Contains(result, "change at line 1") {
		t.Errorf("Unexpected result: %s", result)
	}

	data, _ := os.ReadFile(testFile)
	if !strings.Contains(string(data), "return 2") {
		t.Errorf("Fallback edit did not apply: %q", string(data))
	}
	if !strings.Contains(string(data), "}\n") {
		t.Errorf("Rest of file must survive the edit: %q", string(data))
	}
}

func TestBashTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	tool := &BashTool{}

	result, err := tool.Execute(map[string]any{"command": "echo hello"}, dir)
	if err != nil {
		t.Fatalf("bash failed: %v", err)
	}
	if !strings.Contains(result, "hello") {
		t.Errorf("Expected command output, got: %s", result)
	}

	// Runs in the working directory
	os.WriteFile(filepath.Join(dir, "marker.txt"), []byte(""), 0644)
	result, _ = tool.Execute(map[string]any{"command": "ls"}, dir)
	if !strings.Contains(result, "marker.txt") {
		t.Errorf("Command must run in the working dir: %s", result)
	}

	// Stderr is merged into the output
	result, _ = tool.Execute(map[string]any{"command": "echo oops 1>&2"}, dir)
	if !strings.Contains(result, "oops") {
		t.Errorf("Stderr must be captured: %s", result)
	}

	// Nonzero exit is reported in the text, not as an error
	result, err = tool.Execute(map[string]any{"command": "exit 3"}, dir)
	if err != nil {
		t.Fatalf("Nonzero exit must not be an error: %v", err)
	}
	if !strings.Contains(result, "[Exit code: 3]") {
		t.Errorf("Expected exit code annotation, got: %s", result)
	}

	// No output
	result, _ = tool.Execute(map[string]any{"command": "true"}, dir)
	if result != "(no output)" {
		t.Errorf("Expected placeholder for silent command, got: %s", result)
	}
}

func TestBashToolTimeout(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	tool := &BashTool{}
	result, err := tool.Execute(map[string]any{
		"command": "sleep 5",
		"timeout": float64(1),
	}, dir)
	if err != nil {
		t.Fatalf("Timeout must not be an error: %v", err)
	}
	if !strings.Contains(result, "[Timed out after 1 seconds]") {
		t.Errorf("Expected timeout annotation, got: %s", result)
	}
}

func TestBashToolOutputCap(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	tool := &BashTool{}
	result, err := tool.Execute(map[string]any{"command": "seq 3000"}, dir)
	if err != nil {
		t.Fatalf("bash failed: %v", err)
	}
	if !strings.Contains(result, "[Output truncated at 2000 lines]") {
		t.Error("Expected truncation annotation")
	}
	if strings.Contains(result, "\n2500\n") {
		t.Error("Lines past the cap must be dropped")
	}
}

func TestGrepTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello world\nfoo bar\n"), 0644)
	os.MkdirAll(filepath.Join(dir, "sub"), 0755)
	os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("hello again\n"), 0644)

	tool := &GrepTool{}

	result, err := tool.Execute(map[string]any{"pattern": "hello"}, dir)
	if err != nil {
		t.Fatalf("grep failed: %v", err)
	}
	if !strings.Contains(result, "a.txt:1:hello world") {
		t.Errorf("Expected path:line:text match, got: %s", result)
	}
	if !strings.Contains(result, filepath.Join("sub", "b.txt")) {
		t.Errorf("Expected nested match, got: %s", result)
	}

	result, err = tool.Execute(map[string]any{"pattern": "nosuchtext"}, dir)
	if err != nil {
		t.Fatalf("grep failed: %v", err)
	}
	if result != "No matches found for pattern: nosuchtext" {
		t.Errorf("Unexpected no-match result: %s", result)
	}
}

func TestGrepWalkFallback(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	os.WriteFile(filepath.Join(dir, "a.txt"), []byte("needle here\nplain line\n"), 0644)
	os.MkdirAll(filepath.Join(dir, ".git"), 0755)
	os.WriteFile(filepath.Join(dir, ".git", "blob"), []byte("needle hidden\n"), 0644)

	matches, err := grepWithWalk("needle", dir)
	if err != nil {
		t.Fatalf("walk search failed: %v", err)
	}
	if len(matches) != 1 || !strings.Contains(matches[0], "a.txt:1:needle here") {
		t.Errorf("Unexpected matches: %v", matches)
	}
}

func TestFindTool(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	os.WriteFile(filepath.Join(dir, "main.go"), []byte(""), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(""), 0644)
	os.MkdirAll(filepath.Join(dir, "pkg", "util"), 0755)
	os.WriteFile(filepath.Join(dir, "pkg", "util", "x.go"), []byte(""), 0644)
	os.MkdirAll(filepath.Join(dir, "node_modules", "dep"), 0755)
	os.WriteFile(filepath.Join(dir, "node_modules", "dep", "y.go"), []byte(""), 0644)

	tool := &FindTool{}

	// A bare pattern matches file names anywhere in the tree
	result, err := tool.Execute(map[string]any{"pattern": "*.go"}, dir)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !strings.Contains(result, "main.go") || !strings.Contains(result, "pkg/util/x.go") {
		t.Errorf("Expected .go files, got: %s", result)
	}
	if strings.Contains(result, "notes.txt") {
		t.Errorf("Non-matching file listed: %s", result)
	}
	if strings.Contains(result, "node_modules") {
		t.Errorf("Excluded directory searched: %s", result)
	}

	// A path pattern matches against the relative path
	result, err = tool.Execute(map[string]any{"pattern": "pkg/**/*.go"}, dir)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !strings.Contains(result, "pkg/util/x.go") || strings.Contains(result, "main.go") {
		t.Errorf("Path pattern mismatch: %s", result)
	}

	result, _ = tool.Execute(map[string]any{"pattern": "*.rs"}, dir)
	if result != "No files found matching pattern: *.rs" {
		t.Errorf("Unexpected no-match result: %s", result)
	}
}

func TestRegistryOrderAndSpecs(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	reg := NewRegistry(dir)
	specs := reg.Specs()

	want := []string{"read", "write", "edit", "bash", "grep", "find"}
	if len(specs) != len(want) {
		t.Fatalf("Expected %d specs, got %d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Function.Name != name {
			t.Errorf("Spec %d: expected %s, got %s", i, name, specs[i].Function.Name)
		}
		if specs[i].Type != "function" {
			t.Errorf("Spec %d must declare the function type", i)
		}
		if specs[i].Function.Parameters["type"] != "object" {
			t.Errorf("Spec %d parameters must be a schema object", i)
		}
	}
}

func TestRegistryReadOnly(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	reg := NewReadOnlyRegistry(dir)
	for _, name := range []string{"read", "grep", "find"} {
		if !reg.Has(name) {
			t.Errorf("Readonly registry must keep %s", name)
		}
	}
	for _, name := range []string{"write", "edit", "bash"} {
		if reg.Has(name) {
			t.Errorf("Readonly registry must not expose %s", name)
		}
	}
}

func TestRegistryExecute(t *testing.T) {
	dir := setupTestDir(t)
	defer os.RemoveAll(dir)

	os.WriteFile(filepath.Join(dir, "f.txt"), []byte("content\n"), 0644)
	reg := NewRegistry(dir)

	result, err := reg.Execute("read", `{"path": "f.txt"}`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(result, "content") {
		t.Errorf("Unexpected result: %s", result)
	}

	if _, err := reg.Execute("teleport", `{}`); err == nil {
		t.Error("Expected error for unknown tool")
	}

	if _, err := reg.Execute("read", `{"path": `); err == nil {
		t.Error("Expected error for malformed arguments")
	}
}
