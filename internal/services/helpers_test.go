package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"alfredoptarigan/exam-grader/internal/models"
)

// fakeProvider answers from a per-model script and records every call.
type fakeProvider struct {
	mu      sync.Mutex
	calls   []string
	reqs    []GenerateRequest
	respond func(ctx context.Context, model string, req GenerateRequest) (string, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(ctx context.Context, model string, req GenerateRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, model)
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.respond(ctx, model, req)
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func replyWith(text string) func(context.Context, string, GenerateRequest) (string, error) {
	return func(context.Context, string, GenerateRequest) (string, error) { return text, nil }
}

func newTestOrchestrator(backend Provider, chains Chains) *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Provider: ProviderConfig{Provider: ProviderGemini, APIKey: "test-key", Chains: chains},
		Backend:  backend,
	})
}

// testPNG encodes a w x h image with a diagonal gradient so it does not
// compress to nothing.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8((x + y) * 3), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testImage(t *testing.T, name string, w, h int) models.Image {
	t.Helper()
	return models.Image{Name: name, MIMEType: "image/png", Data: testPNG(t, w, h)}
}
