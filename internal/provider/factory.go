package provider

import (
	"context"
	"fmt"
)

// New creates a new provider based on the configured name.
// If name is empty or "auto", the type is detected from the host.
func New(ctx context.Context, host, name, apiKey string) (Provider, error) {
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}

	providerType := ParseVendorConfig(name)

	// Auto-detect if not specified
	if providerType == TypeUnknown {
		providerType = Detect(ctx, host)
	}

	return NewWithType(providerType, host, apiKey)
}

// NewWithType creates a provider with an explicit type (no auto-detection)
func NewWithType(providerType Type, host, apiKey string) (Provider, error) {
	if host == "" {
		host = providerType.DefaultHost()
	}
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}

	switch providerType {
	case TypeLMStudio:
		return NewLMStudioProvider(host, apiKey), nil
	case TypeOllama:
		return NewOllamaProvider(host, apiKey), nil
	case TypeLlamaCpp:
		return NewLlamaCppProvider(host, apiKey), nil
	case TypeVLLM:
		return NewVLLMProvider(host, apiKey), nil
	default:
		// OpenAI-compatible is the safest assumption for unknown servers
		return NewVLLMProvider(host, apiKey), nil
	}
}
