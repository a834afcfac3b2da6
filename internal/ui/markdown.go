package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

var markdownRenderer *glamour.TermRenderer

func init() {
	initMarkdownRenderer()
}

// initMarkdownRenderer initializes the Glamour markdown renderer
func initMarkdownRenderer() {
	var err error

	// Use auto style which adapts to light/dark terminals
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
		glamour.WithEmoji(),
	)
	if err != nil {
		// Fallback: renderer will be nil, RenderMarkdown returns plain text
		markdownRenderer = nil
	}
}

// RenderMarkdown renders markdown content with syntax highlighting.
// Content passes through unstyled when the renderer is unavailable.
func RenderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}

	// Trim extra whitespace that glamour sometimes adds
	return strings.TrimSpace(rendered)
}

// DisableMarkdown disables markdown rendering (returns plain text)
func DisableMarkdown() {
	markdownRenderer = nil
}

// IsMarkdownEnabled returns whether markdown rendering is available
func IsMarkdownEnabled() bool {
	return markdownRenderer != nil
}
