package diff

import (
	"strings"
	"testing"
)

func TestComputeSingleLineChange(t *testing.T) {
	lines := Compute("a\nb\nc", "a\nx\nc", 10)

	expected := []Line{
		{Context, 10, "a"},
		{Removed, 11, "b"},
		{Added, 11, "x"},
		{Context, 12, "c"},
	}

	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %+v", len(expected), len(lines), lines)
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Line %d: expected %+v, got %+v", i, want, lines[i])
		}
	}
}

func TestComputeIdentical(t *testing.T) {
	lines := Compute("a\nb\nc", "a\nb\nc", 1)

	added, removed := Stats(lines)
	if added != 0 || removed != 0 {
		t.Errorf("Expected 0 added and 0 removed, got %d/%d", added, removed)
	}
	for i, l := range lines {
		if l.Kind != Context {
			t.Errorf("Line %d: expected context, got %+v", i, l)
		}
	}
}

func TestComputeRemovalBeforeAddition(t *testing.T) {
	// A replaced line must render as removal first, then addition
	lines := Compute("old", "new", 1)

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0].Kind != Removed || lines[0].Text != "old" {
		t.Errorf("Expected removal first, got %+v", lines[0])
	}
	if lines[1].Kind != Added || lines[1].Text != "new" {
		t.Errorf("Expected addition second, got %+v", lines[1])
	}
}

func TestComputeInsertionOnly(t *testing.T) {
	lines := Compute("a\nc", "a\nb\nc", 5)

	added, removed := Stats(lines)
	if added != 1 || removed != 0 {
		t.Errorf("Expected 1 added and 0 removed, got %d/%d", added, removed)
	}

	// Inserted line takes the new file's numbering
	found := false
	for _, l := range lines {
		if l.Kind == Added {
			found = true
			if l.Number != 6 || l.Text != "b" {
				t.Errorf("Expected Added(6, b), got %+v", l)
			}
		}
	}
	if !found {
		t.Error("No added line in diff")
	}
}

func TestComputeDeletionOnly(t *testing.T) {
	lines := Compute("a\nb\nc", "a\nc", 1)

	added, removed := Stats(lines)
	if added != 0 || removed != 1 {
		t.Errorf("Expected 0 added and 1 removed, got %d/%d", added, removed)
	}
}

func TestComputeTrailingNewline(t *testing.T) {
	// A trailing separator produces a final empty line on both sides
	lines := Compute("a\n", "a\nb\n", 1)

	added, removed := Stats(lines)
	if added != 1 || removed != 0 {
		t.Errorf("Expected 1 added and 0 removed, got %d/%d", added, removed)
	}
}

func TestComputeReconstruction(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"replace middle", "a\nb\nc", "a\nx\nc"},
		{"prepend", "b\nc", "a\nb\nc"},
		{"append", "a\nb", "a\nb\nc"},
		{"delete all", "a\nb\nc", ""},
		{"create all", "", "a\nb\nc"},
		{"rewrite", "one\ntwo\nthree", "un\ndeux\ntrois"},
		{"trailing newline", "a\nb\n", "a\nb"},
		{"interleaved", "a\nb\nc\nd\ne", "a\nx\nc\ny\ne"},
	}

	for _, tc := range cases {
		lines := Compute(tc.old, tc.new, 1)

		var oldParts, newParts []string
		for _, l := range lines {
			if l.Kind != Added {
				oldParts = append(oldParts, l.Text)
			}
			if l.Kind != Removed {
				newParts = append(newParts, l.Text)
			}
		}

		if got := strings.Join(oldParts, "\n"); got != tc.old {
			t.Errorf("%s: old reconstruction mismatch: expected %q, got %q", tc.name, tc.old, got)
		}
		if got := strings.Join(newParts, "\n"); got != tc.new {
			t.Errorf("%s: new reconstruction mismatch: expected %q, got %q", tc.name, tc.new, got)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	out := Render("a\nb\nc", "a\nx\nc", 10)

	if !strings.Contains(out, "Added 1 line, removed 1 line") {
		t.Errorf("Expected summary in output:\n%s", out)
	}
	if !strings.Contains(out, "-b") {
		t.Errorf("Expected removed line marker in output:\n%s", out)
	}
	if !strings.Contains(out, "+x") {
		t.Errorf("Expected added line marker in output:\n%s", out)
	}
}

func TestRenderPlural(t *testing.T) {
	out := Render("a\nb", "x\ny", 1)

	if !strings.Contains(out, "Added 2 lines, removed 2 lines") {
		t.Errorf("Expected plural summary, got:\n%s", out)
	}
}

func TestRenderIdenticalOmitsWindow(t *testing.T) {
	out := Render("same\ntext", "same\ntext", 1)

	if !strings.Contains(out, "Added 0 lines, removed 0 lines") {
		t.Errorf("Expected zero summary, got:\n%s", out)
	}
	// Summary only, no line rows
	if strings.Count(out, "\n") != 1 {
		t.Errorf("Expected a single summary line, got:\n%q", out)
	}
}

func TestRenderTrimsDistantLines(t *testing.T) {
	var oldLines []string
	for i := 0; i < 20; i++ {
		oldLines = append(oldLines, "line")
	}
	old := strings.Join(oldLines, "\n")
	updated := "changed\n" + strings.Join(oldLines[1:], "\n")

	out := Render(old, updated, 1)

	if !strings.Contains(out, "...") {
		t.Errorf("Expected ellipsis for trimmed lines:\n%s", out)
	}
	// Summary + removal + addition + 3 context rows + ellipsis
	if rows := strings.Count(out, "\n"); rows != 7 {
		t.Errorf("Expected 7 output rows, got %d:\n%s", rows, out)
	}
}

func TestRenderNewFile(t *testing.T) {
	out := RenderNewFile("a\nb\nc")

	if !strings.Contains(out, "3 lines") {
		t.Errorf("Expected line count, got: %s", out)
	}
	if !strings.Contains(out, "5 bytes") {
		t.Errorf("Expected byte count, got: %s", out)
	}

	single := RenderNewFile("x")
	if !strings.Contains(single, "1 line,") {
		t.Errorf("Expected singular form, got: %s", single)
	}
}
