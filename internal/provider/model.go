package provider

import (
	"context"
	"fmt"
)

// Default generation limits applied when the config does not set them.
const (
	DefaultContextWindow = 128000
	DefaultMaxTokens     = 16384
)

// Model is the resolved target of a session: the model id and the endpoint
// it is served from, plus generation limits. Fallback is set when the server
// could not be asked and the configured id was trusted as-is.
type Model struct {
	ID            string
	BaseURL       string
	ContextWindow int
	MaxTokens     int
	Fallback      bool
}

// Resolve determines which model the server is serving. When listing
// succeeds, the configured id wins if the server actually has it, otherwise
// the first listed entry is taken as the loaded model. When listing fails,
// the configured id is kept as a fallback; with no configured id either,
// resolution fails.
func Resolve(ctx context.Context, p Provider, configured string, maxTokens int) (Model, error) {
	m := Model{
		ID:            configured,
		BaseURL:       p.Info().BaseURL(),
		ContextWindow: DefaultContextWindow,
		MaxTokens:     DefaultMaxTokens,
	}
	if maxTokens > 0 {
		m.MaxTokens = maxTokens
	}

	models, err := withRetry(ctx, "model detection", func() ([]string, error) {
		return p.DetectModels(ctx)
	})
	if err != nil || len(models) == 0 {
		if configured == "" {
			if err == nil {
				err = fmt.Errorf("server returned no models")
			}
			return m, fmt.Errorf("no model configured and detection failed: %w", err)
		}
		m.Fallback = true
		p.SetModel(m.ID)
		return m, nil
	}

	listed := false
	for _, id := range models {
		if id == configured {
			listed = true
			break
		}
	}
	if configured == "" || !listed {
		m.ID = models[0]
	}

	p.SetModel(m.ID)
	return m, nil
}
