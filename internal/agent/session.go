package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tara-vision/taragent/internal/storage"
	"github.com/tara-vision/taragent/internal/ui"
)

const (
	// maxIterations bounds tool-call rounds within one user message.
	maxIterations = 10
	// maxToolResultChars caps what a single tool result feeds back to the model.
	maxToolResultChars = 50000
	// apiResponseTimeout bounds one full turn, tool rounds included.
	apiResponseTimeout = 5 * time.Minute
)

const truncationNote = "\n[Output truncated at 50KB]"

const baseSystemPrompt = `You are taragent, a coding agent for local LLMs running in the user's terminal.
You have access to the user's working directory through tools: read, write, edit, bash, grep and find.

Guidelines:
- Inspect before you change: read files and search the project before editing.
- Prefer edit for small changes; use write only when creating or fully replacing a file.
- Use bash for builds, tests and one-off commands.
- When a task needs several steps, chain tool calls until it is done, then summarize what changed.
- Keep answers short. Do not restate file contents the user just saw.
- If a tool fails, adjust the call or try another tool instead of giving up.`

// SessionConfig carries everything a session needs to talk to a model and
// run tools. Executor may be nil when the provider cannot handle tool calls.
type SessionConfig struct {
	ModelID    string
	BaseURL    string
	APIKey     string
	MaxTokens  int
	HTTPClient *http.Client
	Executor   ToolExecutor
	Storage    *storage.Manager
	WorkingDir string
	ProjectDoc string
	Output     io.Writer

	// Plain suppresses the spinner, markdown rendering and tool status
	// lines; filtered model text is written raw as it streams.
	Plain bool
}

// Session drives the conversation with the model: it owns the history,
// streams responses and dispatches tool calls.
type Session struct {
	cfg      SessionConfig
	history  []Message
	renderer *ui.Renderer
	spinner  *ui.Spinner

	// wroteText and lastByte track plain-mode output so it can be closed
	// with a final newline.
	wroteText bool
	lastByte  byte
}

// NewSession creates a session from the given configuration.
func NewSession(cfg SessionConfig) *Session {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	s := &Session{cfg: cfg, renderer: ui.NewRenderer()}
	if !cfg.Plain {
		s.spinner = ui.NewSpinner()
	}
	return s
}

// HistoryLen reports how many messages the conversation holds.
func (s *Session) HistoryLen() int {
	return len(s.history)
}

// Clear drops the conversation history.
func (s *Session) Clear() {
	s.history = nil
}

// SetProjectDoc swaps the project context used in subsequent requests,
// keeping the conversation history intact.
func (s *Session) SetProjectDoc(doc string) {
	s.cfg.ProjectDoc = doc
}

// systemPrompt assembles the instructions sent with every request. The
// project brief, when present, sits between the identity and the working
// directory line.
func (s *Session) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString(baseSystemPrompt)
	if doc := strings.TrimSpace(s.cfg.ProjectDoc); doc != "" {
		sb.WriteString("\n\n## Project context\n\n")
		sb.WriteString(doc)
	}
	sb.WriteString(fmt.Sprintf("\n\nCurrent working directory: %s", s.cfg.WorkingDir))
	return sb.String()
}

func (s *Session) buildRequest() chatRequest {
	messages := make([]Message, 0, len(s.history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: s.systemPrompt()})
	messages = append(messages, s.history...)

	req := chatRequest{
		Model:         s.cfg.ModelID,
		MaxTokens:     s.cfg.MaxTokens,
		Stream:        true,
		Messages:      messages,
		StreamOptions: &streamOptions{IncludeUsage: true},
	}
	if s.cfg.Executor != nil {
		if specs := s.cfg.Executor.Specs(); len(specs) > 0 {
			req.Tools = specs
		}
	}
	return req
}

// SendMessage runs one user turn. It streams the model response, executes
// any tool calls and feeds their results back until the model answers in
// plain text or the iteration limit is reached. A streaming request is
// never retried once started.
func (s *Session) SendMessage(ctx context.Context, userInput string) error {
	ctx, cancel := context.WithTimeout(ctx, apiResponseTimeout)
	defer cancel()

	s.history = append(s.history, Message{Role: RoleUser, Content: userInput})

	for i := 0; i < maxIterations; i++ {
		s.startSpinner("Thinking...")

		stream, err := chatStream(ctx, s.cfg.HTTPClient, s.cfg.BaseURL, s.cfg.APIKey, s.buildRequest())
		if err != nil {
			s.stopSpinner()
			return err
		}

		filter := NewThinkFilter()
		acc := newToolCallAccumulator()
		var display strings.Builder

		for {
			event, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.stopSpinner()
				stream.Close()
				return err
			}

			switch event.Kind {
			case EventContent:
				s.emitText(&display, filter.Process(event.Text))
			case EventToolCall:
				acc.Add(event.Delta)
			}
		}
		s.emitText(&display, filter.Flush())

		if usage := stream.Usage(); usage != nil && s.cfg.Storage != nil {
			s.cfg.Storage.RecordUsage(s.cfg.ModelID, *usage)
		}
		stream.Close()
		s.stopSpinner()

		calls := acc.Finalize()
		s.history = append(s.history, Message{
			Role:      RoleAssistant,
			Content:   filter.FullContent(),
			ToolCalls: calls,
		})

		if !s.cfg.Plain {
			if text := strings.TrimSpace(display.String()); text != "" {
				fmt.Fprintln(s.cfg.Output, ui.RenderMarkdown(text))
			}
		}

		if len(calls) == 0 {
			s.finishPlainOutput()
			return nil
		}

		for _, call := range calls {
			s.runToolCall(call)
		}
	}

	s.finishPlainOutput()
	if !s.cfg.Plain {
		fmt.Fprintln(s.cfg.Output, s.renderer.WarningMessage("Stopped after too many tool rounds; ask again to continue"))
	}
	return nil
}

// emitText routes filtered model text: straight to the output in plain
// mode, into the turn buffer otherwise.
func (s *Session) emitText(display *strings.Builder, text string) {
	if text == "" {
		return
	}
	if s.cfg.Plain {
		fmt.Fprint(s.cfg.Output, text)
		s.wroteText = true
		s.lastByte = text[len(text)-1]
		return
	}
	display.WriteString(text)
}

// finishPlainOutput terminates plain-mode output with a newline.
func (s *Session) finishPlainOutput() {
	if s.cfg.Plain && s.wroteText && s.lastByte != '\n' {
		fmt.Fprintln(s.cfg.Output)
		s.lastByte = '\n'
	}
}

// runToolCall executes one call and appends its result to the history.
// The part of the result after the diff separator is display only and
// never reaches the model.
func (s *Session) runToolCall(call ToolCall) {
	name := call.Function.Name
	args := call.Function.Arguments

	s.startSpinner(s.renderer.ToolLabel(name, args) + "...")

	result, failed := s.executeTool(name, args)
	modelPart, displayPart, _ := strings.Cut(result, DiffSeparator)
	if len(modelPart) > maxToolResultChars {
		modelPart = modelPart[:maxToolResultChars] + truncationNote
	}

	s.stopSpinner()

	if !s.cfg.Plain {
		fmt.Fprintln(s.cfg.Output, s.renderer.FormatToolStatus(name, args, modelPart, failed))
		if displayPart != "" {
			fmt.Fprint(s.cfg.Output, displayPart)
		}
	}

	s.history = append(s.history, Message{
		Role:       RoleTool,
		Content:    modelPart,
		ToolCallID: call.ID,
	})
}

// executeTool dispatches one call. Failures become tool results rather
// than session errors so the model can react to them.
func (s *Session) executeTool(name, args string) (string, bool) {
	if s.cfg.Executor == nil || !s.cfg.Executor.Has(name) {
		return fmt.Sprintf("Error: Unknown tool: %s", name), true
	}
	result, err := s.cfg.Executor.Execute(name, args)
	if err != nil {
		return fmt.Sprintf("Error: %s", err), true
	}
	return result, false
}

func (s *Session) startSpinner(message string) {
	if s.spinner != nil {
		s.spinner.Start(message)
	}
}

func (s *Session) stopSpinner() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}
