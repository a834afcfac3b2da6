package agent

import (
	"strings"
	"testing"
)

// runFilter feeds text through a fresh filter in chunks of the given size
// and returns the concatenated display output.
func runFilter(text string, chunkSize int) (string, *ThinkFilter) {
	f := NewThinkFilter()
	var out strings.Builder
	for i := 0; i < len(text); i += chunkSize {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		out.WriteString(f.Process(text[i:end]))
	}
	out.WriteString(f.Flush())
	return out.String(), f
}

func TestFilterPassesPlainText(t *testing.T) {
	out, _ := runFilter("hello world", 3)
	if out != "hello world" {
		t.Errorf("Expected passthrough, got %q", out)
	}
}

func TestFilterHidesThinkBlock(t *testing.T) {
	out, f := runFilter("before <think>secret reasoning</think>after", 1)

	if out != "before after" {
		t.Errorf("Expected think block hidden, got %q", out)
	}
	if !strings.Contains(f.FullContent(), "secret reasoning") {
		t.Error("Full content must retain the suppressed section")
	}
	if !strings.Contains(f.FullContent(), "<think>") {
		t.Error("Full content must retain the markers")
	}
}

func TestFilterChunkingInvariance(t *testing.T) {
	text := "a<think>bb</think>c <thi not a tag <think>dd</think>e"

	reference, _ := runFilter(text, len(text))
	for size := 1; size <= 7; size++ {
		out, _ := runFilter(text, size)
		if out != reference {
			t.Errorf("Chunk size %d: got %q, want %q", size, out, reference)
		}
	}
	if strings.Contains(reference, "bb") || strings.Contains(reference, "dd") {
		t.Errorf("Suppressed text leaked: %q", reference)
	}
}

func TestFilterFlushesFalsePrefix(t *testing.T) {
	out, _ := runFilter("x<thinking about it", 1)
	if out != "x<thinking about it" {
		t.Errorf("False prefix must be flushed in full, got %q", out)
	}

	out, _ = runFilter("a<th", 1)
	if out != "a<th" {
		t.Errorf("Trailing partial prefix must flush at end of stream, got %q", out)
	}
}

func TestFilterMarkerAfterAngleRun(t *testing.T) {
	// The second < starts the real marker even though the first one failed
	out, _ := runFilter("<<think>hidden</think>", 2)
	if out != "<" {
		t.Errorf("Expected only the stray bracket, got %q", out)
	}
}

func TestFilterUnclosedBlockStaysHidden(t *testing.T) {
	out, f := runFilter("shown <think>never closed", 4)

	if out != "shown " {
		t.Errorf("Unclosed think content must stay hidden, got %q", out)
	}
	if !strings.Contains(f.FullContent(), "never closed") {
		t.Error("Full content must retain unclosed section")
	}
}

func TestFilterMultipleBlocks(t *testing.T) {
	out, _ := runFilter("a<think>1</think>b<think>2</think>c", 5)
	if out != "abc" {
		t.Errorf("Expected all blocks hidden, got %q", out)
	}
}

func TestFilterNeverReemits(t *testing.T) {
	f := NewThinkFilter()
	first := f.Process("hello ")
	second := f.Process("world")
	if first != "hello " || second != "world" {
		t.Errorf("Each call must emit only new text: %q then %q", first, second)
	}
	if f.Flush() != "" {
		t.Error("Nothing left to flush after full emission")
	}
}
