package provider

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Type represents the LLM provider type
type Type string

const (
	TypeLMStudio Type = "lm-studio"
	TypeOllama   Type = "ollama"
	TypeVLLM     Type = "vllm"
	TypeLlamaCpp Type = "llama.cpp"
	TypeUnknown  Type = "unknown"
)

// String returns the string representation of the provider type
func (t Type) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the provider type
func (t Type) DisplayName() string {
	switch t {
	case TypeLMStudio:
		return "LM Studio"
	case TypeOllama:
		return "Ollama"
	case TypeVLLM:
		return "vLLM"
	case TypeLlamaCpp:
		return "llama.cpp"
	default:
		return "Unknown"
	}
}

// DefaultHost returns the conventional local endpoint for the provider type
func (t Type) DefaultHost() string {
	switch t {
	case TypeLMStudio:
		return "http://127.0.0.1:1234"
	case TypeOllama:
		return "http://127.0.0.1:11434"
	case TypeVLLM:
		return "http://127.0.0.1:8000"
	case TypeLlamaCpp:
		return "http://127.0.0.1:8080"
	default:
		return ""
	}
}

// Info holds provider metadata
type Info struct {
	Type          Type     // Provider type (lm-studio, ollama, vllm, llama.cpp)
	Name          string   // Display name (e.g., "Ollama")
	Host          string   // Base URL without the API path
	Model         string   // Selected model
	Models        []string // Available models
	APIPath       string   // API path prefix (e.g., "/v1")
	SupportsTools bool     // Whether provider supports native tool calling
}

// BaseURL returns the full OpenAI-compatible endpoint root
func (i *Info) BaseURL() string {
	return i.Host + i.APIPath
}

// Provider interface for LLM operations
type Provider interface {
	// Info returns provider metadata
	Info() *Info

	// DetectModels queries available models from the server
	DetectModels(ctx context.Context) ([]string, error)

	// CreateClient returns an OpenAI-compatible client
	CreateClient() *openai.Client

	// SetModel sets the active model
	SetModel(model string)
}
