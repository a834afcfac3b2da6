package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"

	"github.com/tara-vision/taragent/internal/provider"
	"github.com/tara-vision/taragent/internal/storage"
	"github.com/tara-vision/taragent/internal/ui"
)

type setupChoice struct {
	label string
	ptype provider.Type
}

var setupChoices = []setupChoice{
	{"LM Studio (http://127.0.0.1:1234)", provider.TypeLMStudio},
	{"Ollama (http://127.0.0.1:11434)", provider.TypeOllama},
	{"vLLM (http://127.0.0.1:8000)", provider.TypeVLLM},
	{"llama.cpp (http://127.0.0.1:8080)", provider.TypeLlamaCpp},
	{"Custom URL", provider.TypeUnknown},
}

// runSetup walks the user through provider and model selection and
// writes the result to the config file.
func runSetup(ctx context.Context, mgr *storage.Manager) error {
	r := ui.NewRenderer()
	fmt.Println(ui.TitleStyle.Render("taragent setup"))
	fmt.Println()

	labels := make([]string, len(setupChoices))
	for i, c := range setupChoices {
		labels[i] = c.label
	}
	sel := promptui.Select{
		Label: "Provider",
		Items: labels,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	choice := setupChoices[idx]

	var p provider.Provider
	if choice.ptype == provider.TypeUnknown {
		urlPrompt := promptui.Prompt{
			Label:   "Server URL",
			Default: "http://127.0.0.1:8000",
			Validate: func(s string) error {
				if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
					return fmt.Errorf("URL must start with http:// or https://")
				}
				return nil
			},
		}
		host, herr := urlPrompt.Run()
		if herr != nil {
			return fmt.Errorf("setup cancelled: %w", herr)
		}
		p, err = provider.New(ctx, host, "", "")
		if err != nil {
			return err
		}
	} else {
		p, err = provider.NewWithType(choice.ptype, "", "")
		if err != nil {
			return err
		}
	}

	spinner := ui.NewSpinner()
	spinner.Start("Detecting models...")
	models, err := p.DetectModels(ctx)
	spinner.Stop()

	var model string
	if err != nil || len(models) == 0 {
		fmt.Println(r.WarningMessage("Could not list models from the server"))
		namePrompt := promptui.Prompt{
			Label: "Model id",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("model id cannot be empty")
				}
				return nil
			},
		}
		model, err = namePrompt.Run()
		if err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	} else {
		modelSel := promptui.Select{
			Label: "Model",
			Items: models,
			Size:  10,
			Searcher: func(input string, index int) bool {
				return strings.Contains(strings.ToLower(models[index]), strings.ToLower(input))
			},
			StartInSearchMode: len(models) > 10,
		}
		_, model, err = modelSel.Run()
		if err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
	}

	tokensPrompt := promptui.Prompt{
		Label:   "Max tokens per response",
		Default: strconv.Itoa(provider.DefaultMaxTokens),
		Validate: func(s string) error {
			n, convErr := strconv.Atoi(s)
			if convErr != nil || n <= 0 {
				return fmt.Errorf("enter a positive number")
			}
			return nil
		},
	}
	tokensStr, err := tokensPrompt.Run()
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	maxTokens, _ := strconv.Atoi(tokensStr)

	planPrompt := promptui.Prompt{
		Label: "Planning model (empty to reuse the main model)",
	}
	planModel, err := planPrompt.Run()
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	viper.Set("provider", p.Info().Type.String())
	viper.Set("url", p.Info().Host)
	viper.Set("model", model)
	viper.Set("max_tokens", maxTokens)
	viper.Set("planning.enabled", true)
	if planModel = strings.TrimSpace(planModel); planModel != "" {
		viper.Set("planning.model", planModel)
	}

	if err := viper.WriteConfigAs(mgr.ConfigPath()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Println(r.SuccessMessage("Config written to " + mgr.ConfigPath()))
	fmt.Println()
	return nil
}
