package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBashTimeout = 120
	maxBashLines       = 2000
)

// BashTool runs a shell command in the working directory. Stdout and stderr
// are merged so the model sees output in the order it was produced. A
// nonzero exit or a timeout is reported in the result text, not as an error.
type BashTool struct{}

func (t *BashTool) Name() string { return "bash" }

func (t *BashTool) Description() string {
	return "Execute a shell command in the working directory and return its output. " +
		"Use for builds, tests, git, and anything the other tools do not cover."
}

func (t *BashTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Shell command to execute",
			},
			"timeout": map[string]any{
				"type":        "integer",
				"description": "Timeout in seconds (default 120)",
			},
		},
		"required": []string{"command"},
	}
}

func (t *BashTool) Execute(args map[string]any, workingDir string) (string, error) {
	command, ok := args["command"].(string)
	if !ok || command == "" {
		return "", fmt.Errorf("command parameter is required")
	}

	timeout, hasTimeout := intArg(args, "timeout")
	if !hasTimeout || timeout <= 0 {
		timeout = defaultBashTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	cmd.Dir = workingDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	result := capLines(output.String(), maxBashLines)

	if ctx.Err() == context.DeadlineExceeded {
		if result != "" {
			result += "\n"
		}
		return result + fmt.Sprintf("[Timed out after %d seconds]", timeout), nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if result != "" {
				result += "\n"
			}
			return result + fmt.Sprintf("[Exit code: %d]", exitErr.ExitCode()), nil
		}
		return "", fmt.Errorf("failed to run command: %w", err)
	}

	if strings.TrimSpace(result) == "" {
		return "(no output)", nil
	}
	return result, nil
}

// capLines trims text to at most max lines, annotating when output was cut.
func capLines(text string, max int) string {
	text = strings.TrimRight(text, "\n")
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return text
	}
	return strings.Join(lines[:max], "\n") + fmt.Sprintf("\n[Output truncated at %d lines]", max)
}
