package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tara-vision/taragent/internal/agent"
	"github.com/tara-vision/taragent/internal/provider"
	"github.com/tara-vision/taragent/internal/storage"
	"github.com/tara-vision/taragent/internal/tools"
	"github.com/tara-vision/taragent/internal/ui"
	"github.com/tara-vision/taragent/internal/workspace"
)

var (
	readonly   bool
	printMode  bool
	noPlanning bool
	setupFlag  bool
	noColor    bool

	configFound bool
	appStorage  *storage.Manager

	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "taragent [flags] [prompt]",
	Version: Version,
	Short:   "taragent - coding agent for local LLMs",
	Long: `taragent is an interactive coding agent for OpenAI-compatible local
LLM servers (LM Studio, Ollama, vLLM, llama.cpp). It reads, edits and
searches files, runs commands and shows a line diff for every change.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringP("model", "m", "", "model id (default: first model the server lists)")
	flags.StringP("provider", "P", "", "provider type (lm-studio, ollama, vllm, llama.cpp)")
	flags.StringP("url", "u", "", "server URL (e.g. http://127.0.0.1:11434)")
	flags.BoolVarP(&readonly, "readonly", "r", false, "disable the write, edit and bash tools")
	flags.BoolVarP(&printMode, "print", "p", false, "answer a single prompt on stdout and exit")
	flags.BoolVar(&noPlanning, "no-planning", false, "skip the planning pass for complex tasks")
	flags.String("plan-model", "", "model id used for planning (default: main model)")
	flags.String("plan-url", "", "server URL used for planning (default: main server)")
	flags.BoolVar(&setupFlag, "setup", false, "run the interactive setup wizard")
	flags.BoolVar(&noColor, "no-color", false, "disable colors and markdown rendering")

	viper.BindPFlag("model", flags.Lookup("model"))
	viper.BindPFlag("provider", flags.Lookup("provider"))
	viper.BindPFlag("url", flags.Lookup("url"))
	viper.BindPFlag("planning.model", flags.Lookup("plan-model"))
	viper.BindPFlag("planning.url", flags.Lookup("plan-url"))

	viper.SetDefault("planning.enabled", true)
}

func initConfig() {
	mgr, err := storage.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	appStorage = mgr

	viper.SetConfigFile(mgr.ConfigPath())
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("TARAGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	configFound = viper.ReadInConfig() == nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	if noColor {
		os.Setenv("NO_COLOR", "1")
		ui.DisableMarkdown()
	}

	ctx := cmd.Context()

	// First run without any configuration drops into the wizard, except in
	// print mode where interactive prompts would corrupt the output.
	needsSetup := setupFlag ||
		(!configFound && !printMode &&
			viper.GetString("url") == "" && viper.GetString("provider") == "")
	if needsSetup {
		if err := runSetup(ctx, appStorage); err != nil {
			return err
		}
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	if printMode {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return fmt.Errorf("print mode requires a prompt, e.g.: taragent -p \"explain main.go\"")
		}
		return a.session.SendMessage(ctx, prompt)
	}

	a.startREPL(ctx)
	return nil
}

// app bundles the wired pieces of one run.
type app struct {
	storage       *storage.Manager
	provider      provider.Provider
	model         provider.Model
	session       *agent.Session
	planner       *agent.Planner
	renderer      *ui.Renderer
	workingDir    string
	readonly      bool
	toolsEnabled  bool
	projectLoaded bool
}

func buildApp(ctx context.Context) (*app, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	apiKey := viper.GetString("api_key")
	host := viper.GetString("url")
	name := viper.GetString("provider")

	var p provider.Provider
	switch {
	case host != "":
		p, err = provider.New(ctx, host, name, apiKey)
	case name != "":
		p, err = provider.NewWithType(provider.ParseVendorConfig(name), "", apiKey)
	default:
		return nil, fmt.Errorf("no provider configured; run 'taragent --setup' or pass --url")
	}
	if err != nil {
		return nil, err
	}

	model, err := provider.Resolve(ctx, p, viper.GetString("model"), viper.GetInt("max_tokens"))
	if err != nil {
		return nil, err
	}

	var executor agent.ToolExecutor
	toolsEnabled := p.Info().SupportsTools
	if toolsEnabled {
		if readonly {
			executor = tools.NewReadOnlyRegistry(workingDir)
		} else {
			executor = tools.NewRegistry(workingDir)
		}
	}

	projectDoc, projectLoaded := workspace.Load(workingDir)

	session := agent.NewSession(agent.SessionConfig{
		ModelID:    model.ID,
		BaseURL:    model.BaseURL,
		APIKey:     apiKey,
		MaxTokens:  model.MaxTokens,
		HTTPClient: provider.NewHTTPClient(),
		Executor:   executor,
		Storage:    appStorage,
		WorkingDir: workingDir,
		ProjectDoc: projectDoc,
		Plain:      printMode,
	})

	a := &app{
		storage:       appStorage,
		provider:      p,
		model:         model,
		session:       session,
		renderer:      ui.NewRenderer(),
		workingDir:    workingDir,
		readonly:      readonly,
		toolsEnabled:  toolsEnabled,
		projectLoaded: projectLoaded,
	}

	if viper.GetBool("planning.enabled") && !noPlanning && !printMode {
		a.planner = buildPlanner(p, model, apiKey)
	}

	return a, nil
}

// buildPlanner wires the planning client. A dedicated plan URL gets its own
// OpenAI-compatible client; otherwise the main provider's client is reused.
func buildPlanner(p provider.Provider, model provider.Model, apiKey string) *agent.Planner {
	planModel := viper.GetString("planning.model")
	if planModel == "" {
		planModel = model.ID
	}

	planURL := viper.GetString("planning.url")
	if planURL == "" {
		return agent.NewPlanner(p.CreateClient(), planModel)
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = normalizeBaseURL(planURL)
	cfg.HTTPClient = provider.NewHTTPClient()
	return agent.NewPlanner(openai.NewClientWithConfig(cfg), planModel)
}

// normalizeBaseURL accepts hosts with or without a trailing /v1.
func normalizeBaseURL(host string) string {
	host = strings.TrimSuffix(host, "/")
	host = strings.TrimSuffix(host, "/v1")
	return host + "/v1"
}
