package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewSettingsStore(path)

	saved, err := store.Load()
	if err != nil || saved != nil {
		t.Fatalf("Load() on missing file = %v, %v; want nil, nil", saved, err)
	}

	want := Settings{Provider: ProviderQwen, APIKey: "sk-123"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("settings file mode = %o, want 600", perm)
	}
}

func TestSettingsStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSettingsStore(path).Load(); err == nil {
		t.Error("Load() on a corrupt file returned no error")
	}
}

// recordingFactory hands out fake providers and remembers what it was asked
// to build.
type recordingFactory struct {
	mu    sync.Mutex
	built []ProviderConfig
}

func (f *recordingFactory) build(_ context.Context, cfg ProviderConfig) (Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built = append(f.built, cfg)
	name := string(cfg.Provider)
	return &fakeProvider{respond: func(context.Context, string, GenerateRequest) (string, error) {
		return "answer from " + name, nil
	}}, nil
}

func TestSessionConfigure(t *testing.T) {
	ctx := context.Background()
	factory := &recordingFactory{}
	store := NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"))

	session, err := NewSession(ctx, SessionConfig{Store: store, Factory: factory.build}, Settings{})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}

	provider, hasKey := session.Settings()
	if provider != ProviderGemini || hasKey {
		t.Errorf("Settings() = %s, %v; want gemini without a key", provider, hasKey)
	}
	if len(factory.built) != 0 {
		t.Error("a provider was built without a credential")
	}
	if _, err := session.Client().Tutor(ctx, "q", ""); !errors.Is(err, ErrCredential) {
		t.Errorf("Tutor() before configure error = %v, want ErrCredential", err)
	}

	before := session.Client()
	if err := session.Configure(ctx, "  sk-qwen  ", "Qwen"); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if session.Client() == before {
		t.Error("Configure did not build a new orchestrator")
	}

	text, err := session.Client().Tutor(ctx, "q", "")
	if err != nil {
		t.Fatalf("Tutor() after configure error: %v", err)
	}
	if text != "answer from qwen" {
		t.Errorf("Tutor() = %q, want the qwen provider", text)
	}
	if got := factory.built[0].APIKey; got != "sk-qwen" {
		t.Errorf("credential = %q, want trimmed sk-qwen", got)
	}

	saved, err := store.Load()
	if err != nil || saved == nil || saved.Provider != ProviderQwen {
		t.Errorf("persisted settings = %+v, %v", saved, err)
	}

	reloaded, err := NewSession(ctx, SessionConfig{Store: store, Factory: factory.build}, Settings{Provider: ProviderGemini, APIKey: "env-key"})
	if err != nil {
		t.Fatalf("NewSession reload error: %v", err)
	}
	if provider, _ := reloaded.Settings(); provider != ProviderQwen {
		t.Errorf("reloaded provider = %s, want saved qwen over env gemini", provider)
	}
}

func TestSessionConfigureValidation(t *testing.T) {
	ctx := context.Background()
	factory := &recordingFactory{}
	session, err := NewSession(ctx, SessionConfig{Factory: factory.build}, Settings{Provider: ProviderGemini, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	before := session.Client()

	tests := []struct {
		name, key, provider string
	}{
		{"unknown provider", "k2", "claude"},
		{"blank key", "   ", "gemini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := session.Configure(ctx, tt.key, tt.provider); !errors.Is(err, ErrValidation) {
				t.Errorf("Configure() error = %v, want ErrValidation", err)
			}
		})
	}

	if session.Client() != before {
		t.Error("a rejected Configure replaced the active orchestrator")
	}
}

func TestSessionAppliesChainOverrides(t *testing.T) {
	factory := &recordingFactory{}
	session, err := NewSession(context.Background(), SessionConfig{
		Factory:   factory.build,
		Overrides: map[ProviderID]Chains{ProviderGemini: {Grade: []string{"my-model"}}},
	}, Settings{Provider: ProviderGemini, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}

	if got := session.Client().Chains().Grade; len(got) != 1 || got[0] != "my-model" {
		t.Errorf("Grade chain = %v, want [my-model]", got)
	}

	if err := session.Configure(context.Background(), "k", "qwen"); err != nil {
		t.Fatalf("Configure error: %v", err)
	}
	if got := session.Client().Chains().Grade; got[0] != DefaultChains(ProviderQwen).Grade[0] {
		t.Errorf("qwen Grade chain = %v, want defaults", got)
	}
}
