package config

import (
	"context"
	"log"
	"net/http"

	"alfredoptarigan/exam-grader/internal/services"
)

// InitSession builds the orchestration session: saved settings win over the
// environment, which only seeds the first start.
func InitSession(ctx context.Context, cfg *Config) (*services.Session, error) {
	provider, err := services.ParseProviderID(cfg.AI.Provider)
	if err != nil {
		log.Printf("⚠️  %v, falling back to gemini\n", err)
		provider = services.ProviderGemini
	}

	store := services.NewSettingsStore(cfg.Settings.Path)
	if err := store.EnsureDir(); err != nil {
		return nil, err
	}

	factory := services.NewProviderFactory(services.ProviderOptions{
		GeminiBaseURL: cfg.AI.GeminiBaseURL,
		QwenBaseURL:   cfg.AI.QwenBaseURL,
		HTTPClient:    &http.Client{Timeout: cfg.AI.ProviderTimeout},
	})

	session, err := services.NewSession(ctx, services.SessionConfig{
		Store:   store,
		Factory: factory,
		Overrides: map[services.ProviderID]services.Chains{
			provider: {
				Grade:  cfg.AI.GradeModels,
				Vision: cfg.AI.VisionModels,
				Text:   cfg.AI.TextModels,
			},
		},
		Images:       services.NewImageProcessor(cfg.Image.MaxEdge, cfg.Image.Quality),
		EssayMaxEdge: cfg.Image.EssayMaxEdge,
		BatchLimit:   cfg.AI.BatchLimit,
	}, services.Settings{
		Provider: provider,
		APIKey:   cfg.APIKeyFor(string(provider)),
	})
	if err != nil {
		return nil, err
	}

	active, hasKey := session.Settings()
	if !hasKey {
		log.Printf("⚠️  No API key configured for %s; set one via PUT /api/v1/settings\n", active)
	}

	return session, nil
}
