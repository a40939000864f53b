package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type ProviderID string

const (
	ProviderGemini ProviderID = "gemini"
	ProviderQwen   ProviderID = "qwen"
)

func ParseProviderID(s string) (ProviderID, error) {
	switch id := ProviderID(strings.ToLower(strings.TrimSpace(s))); id {
	case ProviderGemini, ProviderQwen:
		return id, nil
	default:
		return "", fmt.Errorf("unknown provider %q (use gemini or qwen)", s)
	}
}

// GenerateRequest is one model invocation: a prompt plus zero or more
// preprocessed images.
type GenerateRequest struct {
	Prompt      string
	Images      []PreparedImage
	Temperature float32
}

// Provider is a hosted multimodal model API. Generate makes exactly one call
// to the named model and returns its text output. Failures are returned as
// *TransportError.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model string, req GenerateRequest) (string, error)
}

// ProviderConfig is the active provider selection. It is immutable once an
// Orchestrator is built from it.
type ProviderConfig struct {
	Provider ProviderID
	APIKey   string
	Chains   Chains
}

func (c ProviderConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Chains are the prioritized model lists per task group.
type Chains struct {
	Grade  []string
	Vision []string
	Text   []string
}

// DefaultChains returns the built-in fallback order for a provider.
func DefaultChains(id ProviderID) Chains {
	switch id {
	case ProviderQwen:
		return Chains{
			Grade:  []string{"qwen-vl-max", "qwen-vl-plus", "qwen2.5-vl-72b-instruct"},
			Vision: []string{"qwen-vl-plus", "qwen-vl-max", "qwen2.5-vl-72b-instruct"},
			Text:   []string{"qwen-plus", "qwen-max", "qwen-turbo"},
		}
	default:
		return Chains{
			Grade:  []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.0-flash"},
			Vision: []string{"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
			Text:   []string{"gemini-2.5-flash", "gemini-2.0-flash"},
		}
	}
}

// Merge returns c with every empty list filled from defaults.
func (c Chains) Merge(defaults Chains) Chains {
	if len(c.Grade) == 0 {
		c.Grade = defaults.Grade
	}
	if len(c.Vision) == 0 {
		c.Vision = defaults.Vision
	}
	if len(c.Text) == 0 {
		c.Text = defaults.Text
	}
	return c
}

// ProviderOptions carries transport settings shared by every provider.
type ProviderOptions struct {
	GeminiBaseURL string
	QwenBaseURL   string
	HTTPClient    *http.Client
}

// ProviderFactory builds the provider for a configuration.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (Provider, error)

func NewProviderFactory(opts ProviderOptions) ProviderFactory {
	return func(ctx context.Context, cfg ProviderConfig) (Provider, error) {
		switch cfg.Provider {
		case ProviderGemini:
			return NewGeminiProvider(ctx, cfg.APIKey, opts.GeminiBaseURL, opts.HTTPClient)
		case ProviderQwen:
			return NewQwenProvider(cfg.APIKey, opts.QwenBaseURL, opts.HTTPClient), nil
		default:
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
		}
	}
}
