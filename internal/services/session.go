package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
)

type SessionConfig struct {
	// Store persists settings across restarts; nil keeps them in memory.
	Store   SettingsStore
	Factory ProviderFactory
	// Overrides replace the default fallback chains of a provider.
	Overrides    map[ProviderID]Chains
	Images       *ImageProcessor
	EssayMaxEdge int
	BatchLimit   int
}

// Session owns the active Orchestrator. Configure swaps in a freshly built
// one; calls already running keep the instance they started with.
type Session struct {
	cfg     SessionConfig
	mu      sync.Mutex
	current atomic.Pointer[Orchestrator]
}

// NewSession builds the initial Orchestrator from the persisted settings,
// falling back to initial when nothing has been saved.
func NewSession(ctx context.Context, cfg SessionConfig, initial Settings) (*Session, error) {
	s := &Session{cfg: cfg}

	settings := initial
	if cfg.Store != nil {
		saved, err := cfg.Store.Load()
		if err != nil {
			return nil, err
		}
		if saved != nil {
			log.Printf("⚙️  Loaded saved settings for provider %s\n", saved.Provider)
			settings = *saved
		}
	}

	if settings.Provider == "" {
		settings.Provider = ProviderGemini
	}

	orch, err := s.build(ctx, settings)
	if err != nil {
		return nil, err
	}
	s.current.Store(orch)

	return s, nil
}

// Client returns the active Orchestrator.
func (s *Session) Client() *Orchestrator {
	return s.current.Load()
}

// Settings returns the active provider and whether a credential is set.
func (s *Session) Settings() (ProviderID, bool) {
	o := s.Client()
	return o.cfg.Provider, o.cfg.HasCredential()
}

// Configure validates, persists and activates new provider settings.
func (s *Session) Configure(ctx context.Context, credential, provider string) error {
	const op = "configure"

	id, err := ParseProviderID(provider)
	if err != nil {
		return &Error{Kind: KindValidation, Op: op, Message: err.Error()}
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return validationError(op, "an API key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := Settings{Provider: id, APIKey: credential}
	orch, err := s.build(ctx, settings)
	if err != nil {
		return err
	}

	if s.cfg.Store != nil {
		if err := s.cfg.Store.Save(settings); err != nil {
			return err
		}
	}

	s.current.Store(orch)
	log.Printf("⚙️  Provider switched to %s\n", id)

	return nil
}

func (s *Session) build(ctx context.Context, settings Settings) (*Orchestrator, error) {
	providerCfg := ProviderConfig{
		Provider: settings.Provider,
		APIKey:   settings.APIKey,
		Chains:   s.cfg.Overrides[settings.Provider],
	}

	var backend Provider
	if providerCfg.HasCredential() {
		var err error
		backend, err = s.cfg.Factory(ctx, providerCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize provider %s: %w", settings.Provider, err)
		}
	}

	return NewOrchestrator(OrchestratorConfig{
		Provider:     providerCfg,
		Backend:      backend,
		Images:       s.cfg.Images,
		EssayMaxEdge: s.cfg.EssayMaxEdge,
		BatchLimit:   s.cfg.BatchLimit,
	}), nil
}
