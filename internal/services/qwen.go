package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultQwenBaseURL is DashScope's OpenAI-compatible endpoint.
const DefaultQwenBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

type qwenProvider struct {
	api *openai.Client
}

func NewQwenProvider(apiKey, baseURL string, httpClient *http.Client) Provider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = DefaultQwenBaseURL
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	return &qwenProvider{api: openai.NewClientWithConfig(config)}
}

func (q *qwenProvider) Name() string { return string(ProviderQwen) }

// Generate implements Provider.
func (q *qwenProvider) Generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		msg.Content = req.Prompt
	} else {
		parts := make([]openai.ChatMessagePart, 0, len(req.Images)+1)
		for _, img := range req.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    img.DataURL(),
					Detail: openai.ImageURLDetailHigh,
				},
			})
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Prompt,
		})
		msg.MultiContent = parts
	}

	resp, err := q.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", qwenFailure(err)
	}

	if len(resp.Choices) == 0 {
		return "", &TransportError{Provider: q.Name(), Category: CategoryEmpty, Err: errors.New("no choices in response")}
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &TransportError{Provider: q.Name(), Category: CategoryEmpty, Err: errors.New("no text content in response")}
	}

	return text, nil
}

func qwenFailure(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{
			Provider:   string(ProviderQwen),
			Category:   CategoryForStatus(apiErr.HTTPStatusCode),
			StatusCode: apiErr.HTTPStatusCode,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &TransportError{
			Provider:   string(ProviderQwen),
			Category:   CategoryForStatus(reqErr.HTTPStatusCode),
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return transportFailure(string(ProviderQwen), err)
}
