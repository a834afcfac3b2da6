package ui

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tara-vision/taragent/internal/storage"
)

const (
	bashPreviewLines = 4
	bashPreviewCols  = 120
)

// Renderer handles all UI output formatting
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// WelcomeMessage returns the styled welcome banner
func (r *Renderer) WelcomeMessage(providerName, model string, readonly, fallback bool) string {
	var sb strings.Builder

	title := TitleStyle.Render("taragent")
	subtitle := Subtle.Render("coding agent for local LLMs")
	sb.WriteString(fmt.Sprintf("%s - %s\n", title, subtitle))

	if model != "" {
		sb.WriteString(SessionStyle.Render(fmt.Sprintf("  Model: %s (%s)", model, providerName)))
		sb.WriteString("\n")
	}
	if fallback {
		sb.WriteString(WarningStyle.Render(IconWarning + " Could not list models from the server; using the configured model as-is"))
		sb.WriteString("\n")
	}
	if readonly {
		sb.WriteString(WarningStyle.Render(IconWarning + " Read-only mode: write, edit and bash are disabled"))
		sb.WriteString("\n")
	}
	sb.WriteString(Subtle.Render("Type '/help' for commands, '/exit' to quit"))
	sb.WriteString("\n")

	return sb.String()
}

// ProjectContextMessage returns styled project context info
func (r *Renderer) ProjectContextMessage(loaded bool) string {
	if loaded {
		return SuccessStyle.Render(IconFolder+" Project context loaded from TARAGENT.md") + "\n"
	}
	return WarningStyle.Render(IconTip+" Run '/init' to generate TARAGENT.md project context") + "\n"
}

// toolArgs decodes an arguments payload for display, tolerating garbage.
func toolArgs(argsJSON string) map[string]any {
	args := make(map[string]any)
	json.Unmarshal([]byte(argsJSON), &args)
	return args
}

// ToolLabel returns the spinner label shown while a tool runs.
func (r *Renderer) ToolLabel(tool, argsJSON string) string {
	args := toolArgs(argsJSON)
	switch tool {
	case "read":
		path, _ := args["path"].(string)
		return fmt.Sprintf("Reading %s", filepath.Base(path))
	case "write":
		path, _ := args["path"].(string)
		return fmt.Sprintf("Writing %s", filepath.Base(path))
	case "edit":
		path, _ := args["path"].(string)
		return fmt.Sprintf("Editing %s", filepath.Base(path))
	case "bash":
		command, _ := args["command"].(string)
		return fmt.Sprintf("Running %s", firstWord(command))
	case "grep":
		pattern, _ := args["pattern"].(string)
		return fmt.Sprintf("Searching for \"%s\"", pattern)
	case "find":
		pattern, _ := args["pattern"].(string)
		return fmt.Sprintf("Finding %s", pattern)
	default:
		return fmt.Sprintf("Running %s", tool)
	}
}

func firstWord(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "command"
	}
	return fields[0]
}

// FormatToolStatus returns the one-line status printed after a tool ran.
// For bash it also includes a dim preview of the first output lines.
func (r *Renderer) FormatToolStatus(tool, argsJSON, result string, isError bool) string {
	if isError {
		return ToolError.Render(fmt.Sprintf("%s %s failed", IconError, tool))
	}

	args := toolArgs(argsJSON)
	switch tool {
	case "read":
		path, _ := args["path"].(string)
		return ToolRead.Render(fmt.Sprintf("%s Read %s (%d lines)", IconArrow, filepath.Base(path), readLineCount(result)))

	case "write":
		path, _ := args["path"].(string)
		return ToolWrite.Render(fmt.Sprintf("%s Wrote %s", IconSuccess, filepath.Base(path)))

	case "edit":
		path, _ := args["path"].(string)
		return ToolWrite.Render(fmt.Sprintf("%s Edited %s", IconSuccess, filepath.Base(path)))

	case "bash":
		command, _ := args["command"].(string)
		if len(command) > 60 {
			command = command[:57] + "..."
		}
		status := ToolRead.Render(fmt.Sprintf("%s Ran: %s", IconArrow, command))
		return status + "\n" + bashPreview(result)

	case "grep":
		pattern, _ := args["pattern"].(string)
		if strings.Contains(result, "No matches found") {
			return ToolRead.Render(fmt.Sprintf("%s Searched for \"%s\" (no matches)", IconArrow, pattern))
		}
		matches := strings.Count(result, "\n") + 1
		return ToolRead.Render(fmt.Sprintf("%s Searched for \"%s\" (%d matches)", IconArrow, pattern, matches))

	case "find":
		pattern, _ := args["pattern"].(string)
		if strings.Contains(result, "No files found") {
			return ToolRead.Render(fmt.Sprintf("%s Find \"%s\" (no matches)", IconArrow, pattern))
		}
		files := strings.Count(result, "\n") + 1
		return ToolRead.Render(fmt.Sprintf("%s Find \"%s\" (%d files)", IconArrow, pattern, files))

	default:
		return ToolRead.Render(fmt.Sprintf("%s %s completed", IconArrow, tool))
	}
}

// readLineCount counts the numbered lines of a read result, excluding the
// truncation note.
func readLineCount(result string) int {
	if idx := strings.Index(result, "\n\n[Truncated"); idx >= 0 {
		result = result[:idx+1]
	}
	return strings.Count(result, "\n")
}

// bashPreview renders the first lines of command output, dimmed.
func bashPreview(result string) string {
	trimmed := strings.TrimRight(result, "\n")
	if trimmed == "" || trimmed == "(no output)" {
		return Subtle.Render("  (empty)")
	}

	lines := strings.Split(trimmed, "\n")
	shown := lines
	if len(shown) > bashPreviewLines {
		shown = shown[:bashPreviewLines]
	}

	var sb strings.Builder
	for i, line := range shown {
		if len(line) > bashPreviewCols {
			line = line[:bashPreviewCols-3] + "..."
		}
		sb.WriteString(Subtle.Render("  " + line))
		if i < len(shown)-1 {
			sb.WriteString("\n")
		}
	}
	if len(lines) > bashPreviewLines {
		sb.WriteString("\n")
		sb.WriteString(Subtle.Render(fmt.Sprintf("  ... (%d more lines)", len(lines)-bashPreviewLines)))
	}
	return sb.String()
}

// PromptString returns the styled prompt
func (r *Renderer) PromptString() string {
	return PromptStyle.Render("❯") + " "
}

// ErrorMessage formats an error message
func (r *Renderer) ErrorMessage(err error) string {
	return ToolError.Render(fmt.Sprintf("%s Error: %v", IconError, err))
}

// WarningMessage formats a warning message
func (r *Renderer) WarningMessage(msg string) string {
	return WarningStyle.Render(fmt.Sprintf("%s %s", IconWarning, msg))
}

// InfoMessage formats an info message
func (r *Renderer) InfoMessage(msg string) string {
	return SessionStyle.Render(fmt.Sprintf("%s %s", IconInfo, msg))
}

// SuccessMessage formats a success message
func (r *Renderer) SuccessMessage(msg string) string {
	return SuccessStyle.Render(fmt.Sprintf("%s %s", IconSuccess, msg))
}

// FormatUsage formats token accounting for the current run and lifetime.
func (r *Renderer) FormatUsage(run, lifetime storage.TokenUsage, records int) string {
	if lifetime.TotalTokens == 0 {
		return Subtle.Render("No token usage recorded yet.")
	}

	var sb strings.Builder
	sb.WriteString(SessionStyle.Render(IconInfo+" Token Usage") + "\n")
	sb.WriteString("  This session:\n")
	sb.WriteString(fmt.Sprintf("    Prompt tokens:     %d\n", run.PromptTokens))
	sb.WriteString(fmt.Sprintf("    Completion tokens: %d\n", run.CompletionTokens))
	sb.WriteString(fmt.Sprintf("    Total tokens:      %d\n", run.TotalTokens))
	sb.WriteString(fmt.Sprintf("  Lifetime (%d requests):\n", records))
	sb.WriteString(fmt.Sprintf("    Total tokens:      %d\n", lifetime.TotalTokens))

	return sb.String()
}
