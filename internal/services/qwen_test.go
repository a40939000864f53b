package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQwenGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"qwen-vl-max","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewQwenProvider("sk-test", srv.URL, srv.Client())
	text, err := p.Generate(context.Background(), "qwen-vl-max", GenerateRequest{
		Prompt: "read this",
		Images: []PreparedImage{{Data: []byte("img"), MIMEType: "image/jpeg"}},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if text != "hello" {
		t.Errorf("Generate() = %q, want hello", text)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Model != "qwen-vl-max" {
		t.Errorf("model = %q, want qwen-vl-max", got.Model)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(got.Messages))
	}
	content := string(got.Messages[0].Content)
	if !strings.Contains(content, "data:image/jpeg;base64,aW1n") || !strings.Contains(content, "read this") {
		t.Errorf("content = %s, want an image part and the prompt", content)
	}
}

func TestQwenFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Category
	}{
		{"invalid key", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided.","type":"invalid_request_error","code":"invalid_api_key"}}`, CategoryAuth},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Requests rate limit exceeded","type":"requests","code":"Throttling"}}`, CategoryRateLimit},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"internal error","type":"internal_error"}}`, CategoryServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewQwenProvider("sk-test", srv.URL, srv.Client())
			_, err := p.Generate(context.Background(), "qwen-plus", GenerateRequest{Prompt: "hi"})

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("error = %v, want *TransportError", err)
			}
			if te.Category != tt.want || te.StatusCode != tt.status {
				t.Errorf("got %s (HTTP %d), want %s (HTTP %d)", te.Category, te.StatusCode, tt.want, tt.status)
			}
		})
	}
}

func TestQwenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewQwenProvider("sk-test", url, nil)
	_, err := p.Generate(context.Background(), "qwen-plus", GenerateRequest{Prompt: "hi"})

	if kind := classify("tutor", "qwen-plus", err).Kind; kind != KindNetwork {
		t.Errorf("classified kind = %s, want network (err: %v)", kind, err)
	}
}

func TestQwenEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewQwenProvider("sk-test", srv.URL, nil).Generate(context.Background(), "qwen-plus", GenerateRequest{Prompt: "hi"})

	var te *TransportError
	if !errors.As(err, &te) || te.Category != CategoryEmpty {
		t.Errorf("error = %v, want an empty_response transport error", err)
	}
}
