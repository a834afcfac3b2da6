package provider

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// LMStudioProvider implements Provider for LM Studio servers
type LMStudioProvider struct {
	*BaseProvider
}

// NewLMStudioProvider creates a new LM Studio provider
func NewLMStudioProvider(host, apiKey string) *LMStudioProvider {
	base := NewBaseProvider(TypeLMStudio, host, apiKey)
	base.info.SupportsTools = true // LM Studio supports OpenAI-style tool calling
	return &LMStudioProvider{BaseProvider: base}
}

// Info returns provider metadata
func (p *LMStudioProvider) Info() *Info {
	return p.BaseProvider.Info()
}

// DetectModels queries available models from the LM Studio server.
// The first entry is the currently loaded model.
func (p *LMStudioProvider) DetectModels(ctx context.Context) ([]string, error) {
	return p.DetectModelsOpenAI(ctx)
}

// CreateClient returns an OpenAI-compatible client
func (p *LMStudioProvider) CreateClient() *openai.Client {
	return p.BaseProvider.CreateClient()
}

// SetModel sets the active model
func (p *LMStudioProvider) SetModel(model string) {
	p.BaseProvider.SetModel(model)
}
