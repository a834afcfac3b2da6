package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tara-vision/taragent/internal/agent"
)

// Tool is one model-invocable operation. Parameters returns the JSON-Schema
// object declared to the model; Execute receives the decoded arguments.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(args map[string]any, workingDir string) (string, error)
}

// Registry holds the active tool set in registration order and implements
// the executor boundary the session drives.
type Registry struct {
	workingDir string
	tools      map[string]Tool
	order      []string
}

// NewRegistry returns the full tool set rooted at workingDir.
func NewRegistry(workingDir string) *Registry {
	r := newRegistry(workingDir)
	r.Register(&ReadTool{})
	r.Register(&WriteTool{})
	r.Register(&EditTool{})
	r.Register(&BashTool{})
	r.Register(&GrepTool{})
	r.Register(&FindTool{})
	return r
}

// NewReadOnlyRegistry returns only the tools that cannot modify the
// filesystem or run commands.
func NewReadOnlyRegistry(workingDir string) *Registry {
	r := newRegistry(workingDir)
	r.Register(&ReadTool{})
	r.Register(&GrepTool{})
	r.Register(&FindTool{})
	return r
}

func newRegistry(workingDir string) *Registry {
	return &Registry{
		workingDir: workingDir,
		tools:      make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// WorkingDir returns the directory relative paths resolve against.
func (r *Registry) WorkingDir() string {
	return r.workingDir
}

// Specs returns the declared contract of every registered tool, in
// registration order, in the shape the chat completions API expects.
func (r *Registry) Specs() []agent.ToolSpec {
	specs := make([]agent.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, agent.ToolSpec{
			Type: "function",
			Function: agent.FunctionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return specs
}

func (r *Registry) Has(name string) bool {
	_, exists := r.tools[name]
	return exists
}

// Execute decodes the JSON arguments and runs the named tool.
func (r *Registry) Execute(name, argsJSON string) (string, error) {
	tool, exists := r.tools[name]
	if !exists {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	args := make(map[string]any)
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
	}

	return tool.Execute(args, r.workingDir)
}

// resolvePath expands ~ and resolves relative paths against the working
// directory.
func resolvePath(path, workingDir string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			if path == "~" {
				return home
			}
			return filepath.Join(home, path[2:])
		}
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(workingDir, path)
	}
	return path
}

// intArg reads a numeric argument that may arrive as int or float64 from
// JSON unmarshaling.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
