package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
)

type stubProvider struct {
	info   *Info
	models []string
	err    error
}

func newStubProvider(models []string, err error) *stubProvider {
	return &stubProvider{
		info:   &Info{Type: TypeLMStudio, Host: "http://127.0.0.1:1234", APIPath: "/v1"},
		models: models,
		err:    err,
	}
}

func (s *stubProvider) Info() *Info                                        { return s.info }
func (s *stubProvider) DetectModels(ctx context.Context) ([]string, error) { return s.models, s.err }
func (s *stubProvider) CreateClient() *openai.Client                       { return nil }
func (s *stubProvider) SetModel(model string)                              { s.info.Model = model }

func TestResolveTakesFirstListedModel(t *testing.T) {
	p := newStubProvider([]string{"served-model", "other-model"}, nil)

	m, err := Resolve(context.Background(), p, "", 0)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ID != "served-model" {
		t.Errorf("Expected first listed model, got %q", m.ID)
	}
	if m.BaseURL != "http://127.0.0.1:1234/v1" {
		t.Errorf("Unexpected base URL: %q", m.BaseURL)
	}
	if m.ContextWindow != DefaultContextWindow || m.MaxTokens != DefaultMaxTokens {
		t.Errorf("Defaults not applied: %+v", m)
	}
	if m.Fallback {
		t.Error("Successful listing must not be marked fallback")
	}
	if p.info.Model != "served-model" {
		t.Error("Resolve must set the model on the provider")
	}
}

func TestResolveKeepsConfiguredWhenListed(t *testing.T) {
	p := newStubProvider([]string{"other-model", "wanted-model"}, nil)

	m, err := Resolve(context.Background(), p, "wanted-model", 0)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ID != "wanted-model" {
		t.Errorf("Configured model present on server must win, got %q", m.ID)
	}
}

func TestResolveOverridesUnknownConfigured(t *testing.T) {
	p := newStubProvider([]string{"served-model"}, nil)

	m, err := Resolve(context.Background(), p, "gone-model", 0)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.ID != "served-model" {
		t.Errorf("Absent configured model must yield the served one, got %q", m.ID)
	}
}

func TestResolveFallsBackWhenListingFails(t *testing.T) {
	p := newStubProvider(nil, errors.New("boom"))

	m, err := Resolve(context.Background(), p, "configured-model", 0)
	if err != nil {
		t.Fatalf("Configured model must absorb a listing failure: %v", err)
	}
	if m.ID != "configured-model" || !m.Fallback {
		t.Errorf("Expected fallback to configured model, got %+v", m)
	}
}

func TestResolveFailsWithNothingToGoOn(t *testing.T) {
	p := newStubProvider(nil, errors.New("boom"))

	if _, err := Resolve(context.Background(), p, "", 0); err == nil {
		t.Error("Expected error with no configured model and failed listing")
	}
}

func TestResolveAppliesMaxTokens(t *testing.T) {
	p := newStubProvider([]string{"m"}, nil)

	m, err := Resolve(context.Background(), p, "", 4096)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if m.MaxTokens != 4096 {
		t.Errorf("Configured max tokens not applied: %d", m.MaxTokens)
	}
}
