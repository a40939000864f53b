package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (Provider, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiProvider{client: client}, nil
}

func (g *geminiProvider) Name() string { return string(ProviderGemini) }

// Generate implements Provider.
func (g *geminiProvider) Generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	parts = append(parts, &genai.Part{Text: req.Prompt})
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		})
	}

	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", geminiFailure(err)
	}

	if resp == nil {
		return "", &TransportError{Provider: g.Name(), Category: CategoryEmpty, Err: errors.New("nil response")}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &TransportError{Provider: g.Name(), Category: CategoryEmpty, Err: errors.New("no text content in response")}
	}

	return text, nil
}

// geminiFailure classifies a genai error. The Gemini API reports a bad key
// as 400 INVALID_ARGUMENT with an API_KEY_INVALID reason in its details.
func geminiFailure(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return transportFailure(string(ProviderGemini), err)
		}
		apiErr = *ptr
	}

	category := CategoryForStatus(apiErr.Code)
	if hasErrorReason(apiErr.Details, "API_KEY_INVALID") {
		category = CategoryAuth
	}

	return &TransportError{
		Provider:   string(ProviderGemini),
		Category:   category,
		StatusCode: apiErr.Code,
		Err:        err,
	}
}

func hasErrorReason(details []map[string]any, reason string) bool {
	for _, d := range details {
		if r, ok := d["reason"].(string); ok && r == reason {
			return true
		}
	}
	return false
}
