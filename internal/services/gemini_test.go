package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		got = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestGemini(t *testing.T, srv *httptest.Server) Provider {
	t.Helper()
	p, err := NewGeminiProvider(context.Background(), "test-key", srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	return p
}

func TestGeminiGenerate(t *testing.T) {
	srv, body := newGeminiServer(t, http.StatusOK,
		`{"candidates": [{"content": {"role": "model", "parts": [{"text": "hello"}]}, "finishReason": "STOP"}]}`)

	text, err := newTestGemini(t, srv).Generate(context.Background(), "gemini-2.5-flash", GenerateRequest{
		Prompt: "read this",
		Images: []PreparedImage{{Data: []byte("img"), MIMEType: "image/jpeg"}},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if text != "hello" {
		t.Errorf("Generate() = %q, want hello", text)
	}
	for _, want := range []string{"read this", "image/jpeg", "aW1n"} {
		if !strings.Contains(*body, want) {
			t.Errorf("request body lacks %q: %s", want, *body)
		}
	}
}

func TestGeminiFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Category
	}{
		{
			name:   "invalid key",
			status: http.StatusBadRequest,
			body: `{"error": {"code": 400, "message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT",
				"details": [{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_INVALID", "domain": "googleapis.com"}]}}`,
			want: CategoryAuth,
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error": {"code": 400, "message": "Unsupported MIME type", "status": "INVALID_ARGUMENT"}}`,
			want:   CategoryBadRequest,
		},
		{
			name:   "overloaded",
			status: http.StatusServiceUnavailable,
			body:   `{"error": {"code": 503, "message": "The model is overloaded.", "status": "UNAVAILABLE"}}`,
			want:   CategoryServer,
		},
		{
			name:   "empty candidates",
			status: http.StatusOK,
			body:   `{"candidates": []}`,
			want:   CategoryEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newGeminiServer(t, tt.status, tt.body)

			_, err := newTestGemini(t, srv).Generate(context.Background(), "gemini-2.5-pro", GenerateRequest{Prompt: "hi"})

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TransportError", err)
			}
			if te.Category != tt.want {
				t.Errorf("category = %s, want %s (err: %v)", te.Category, tt.want, err)
			}
		})
	}
}

func TestGeminiFailureErrorForms(t *testing.T) {
	invalidKey := genai.APIError{
		Code:    400,
		Message: "API key not valid",
		Status:  "INVALID_ARGUMENT",
		Details: []map[string]any{{"reason": "API_KEY_INVALID"}},
	}

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"value", fmt.Errorf("generate: %w", invalidKey), CategoryAuth},
		{"pointer", fmt.Errorf("generate: %w", &invalidKey), CategoryAuth},
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, CategoryRateLimit},
		{"deadline", context.DeadlineExceeded, CategoryNetwork},
		{"unknown", errors.New("odd"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var te *TransportError
			if !errors.As(geminiFailure(tt.err), &te) {
				t.Fatal("geminiFailure did not return a *TransportError")
			}
			if te.Category != tt.want {
				t.Errorf("category = %s, want %s", te.Category, tt.want)
			}
		})
	}
}

func TestGeminiInvalidKeyAsksForReconfiguration(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusBadRequest,
		`{"error": {"code": 400, "message": "API key not valid.", "status": "INVALID_ARGUMENT", "details": [{"reason": "API_KEY_INVALID"}]}}`)

	orch := NewOrchestrator(OrchestratorConfig{
		Provider: ProviderConfig{Provider: ProviderGemini, APIKey: "bad-key", Chains: Chains{Text: []string{"gemini-2.5-flash"}}},
		Backend:  newTestGemini(t, srv),
	})

	_, err := orch.Tutor(context.Background(), "What is 3x3?", "")
	if !NeedsCredential(err) {
		t.Errorf("NeedsCredential(%v) = false, want true", err)
	}
}
