package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tara-vision/taragent/internal/agent"
	"github.com/tara-vision/taragent/internal/ui"
	"github.com/tara-vision/taragent/internal/workspace"
)

// startREPL runs the interactive loop until the user exits.
func (a *app) startREPL(ctx context.Context) {
	info := a.provider.Info()
	fmt.Print(a.renderer.WelcomeMessage(info.Type.DisplayName(), a.model.ID, a.readonly, a.model.Fallback))
	if !a.toolsEnabled {
		fmt.Println(a.renderer.WarningMessage("This provider does not support tool calling; running as plain chat"))
	}
	fmt.Print(a.renderer.ProjectContextMessage(a.projectLoaded))
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          a.renderer.PromptString(),
		HistoryFile:     a.storage.HistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    newFileCompleter(a.workingDir),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up input: %v\n", err)
		return
	}
	defer rl.Close()

	interrupted := false
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			// Ctrl-C on a non-empty line just clears it; on an empty
			// line the first press warns and the second exits.
			if len(line) > 0 {
				interrupted = false
				continue
			}
			if interrupted {
				fmt.Println("Goodbye!")
				return
			}
			interrupted = true
			fmt.Println(a.renderer.InfoMessage("Press Ctrl-C again to exit"))
			continue
		}
		if err != nil {
			fmt.Println("Goodbye!")
			return
		}
		interrupted = false

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if a.handleCommand(line) {
				return
			}
			continue
		}

		if strings.Contains(line, "@") {
			expanded, err := expandFileReferences(line, a.workingDir)
			if err != nil {
				fmt.Println(a.renderer.ErrorMessage(err))
				continue
			}
			line = expanded
		}

		line = a.maybePlan(ctx, line)

		if err := a.session.SendMessage(ctx, line); err != nil {
			fmt.Println(a.renderer.ErrorMessage(err))
		}
		fmt.Println()
	}
}

// maybePlan runs the planning pass for task-like input and returns the
// prompt to send. Planning failures fall back to the original input.
func (a *app) maybePlan(ctx context.Context, input string) string {
	if a.planner == nil || !agent.ShouldPlan(input) {
		return input
	}

	spin := ui.NewSpinner()
	spin.Start("Planning...")
	plan, err := a.planner.Plan(ctx, input)
	spin.Stop()

	if err != nil {
		fmt.Println(a.renderer.WarningMessage(fmt.Sprintf("Planning skipped: %v", err)))
		return input
	}

	fmt.Println(ui.RenderMarkdown("**Plan**\n\n" + plan))
	fmt.Println()
	return agent.AugmentWithPlan(input, plan)
}

// handleCommand dispatches a slash command. It returns true when the REPL
// should exit.
func (a *app) handleCommand(line string) bool {
	switch strings.Fields(line)[0] {
	case "/exit", "/quit":
		fmt.Println("Goodbye!")
		return true

	case "/clear":
		a.session.Clear()
		fmt.Println(a.renderer.SuccessMessage("Conversation cleared"))

	case "/help":
		printHelp()

	case "/usage":
		lifetime, records := a.storage.TotalUsage()
		fmt.Println(a.renderer.FormatUsage(a.storage.RunUsage(), lifetime, records))

	case "/init":
		a.initProject()

	case "/status":
		a.printStatus()

	default:
		fmt.Printf("Unknown command: %s\n", line)
		fmt.Println("Type '/help' for available commands.")
	}

	fmt.Println()
	return false
}

// initProject analyzes the working directory, writes TARAGENT.md and loads
// it into the running session.
func (a *app) initProject() {
	spin := ui.NewSpinner()
	spin.Start("Analyzing project...")
	brief, err := workspace.Analyze(a.workingDir)
	spin.Stop()
	if err != nil {
		fmt.Println(a.renderer.ErrorMessage(err))
		return
	}

	path, err := workspace.WriteBrief(a.workingDir, brief)
	if err != nil {
		fmt.Println(a.renderer.ErrorMessage(err))
		return
	}

	doc, _ := workspace.Load(a.workingDir)
	a.session.SetProjectDoc(doc)
	a.projectLoaded = true
	fmt.Println(a.renderer.SuccessMessage(fmt.Sprintf("Wrote %s; the brief is now part of the system prompt", filepath.Base(path))))
}

func (a *app) printStatus() {
	info := a.provider.Info()

	fmt.Println("Status:")
	fmt.Printf("  Provider:    %s (%s)\n", info.Type.DisplayName(), info.Host)
	model := a.model.ID
	if a.model.Fallback {
		model += " (configured, not verified)"
	}
	fmt.Printf("  Model:       %s\n", model)
	fmt.Printf("  Max tokens:  %d\n", a.model.MaxTokens)
	fmt.Printf("  Working dir: %s\n", a.workingDir)

	toolState := "enabled"
	if !a.toolsEnabled {
		toolState = "unavailable for this provider"
	} else if a.readonly {
		toolState = "read-only"
	}
	fmt.Printf("  Tools:       %s\n", toolState)

	contextState := "not initialized (run /init)"
	if a.projectLoaded {
		contextState = "loaded from " + workspace.ContextFileName
	}
	fmt.Printf("  Context:     %s\n", contextState)
	fmt.Printf("  Messages:    %d\n", a.session.HistoryLen())
	fmt.Printf("  Storage:     %s\n", a.storage.Dir())
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  /init    - Analyze the project and write TARAGENT.md")
	fmt.Println("  /status  - Show provider, model and session status")
	fmt.Println("  /usage   - Show token usage for this run and lifetime")
	fmt.Println("  /clear   - Clear the conversation history")
	fmt.Println("  /help    - Show this help message")
	fmt.Println("  /exit    - Quit (also /quit or Ctrl-D)")
	fmt.Println()
	fmt.Println("File references:")
	fmt.Println("  @path    - Inline a file into the prompt (e.g. @src/main.go)")
	fmt.Println("  @<Tab>   - Complete file paths after @")
	fmt.Println("  @        - A bare @ at the end opens a fuzzy file picker")
}
