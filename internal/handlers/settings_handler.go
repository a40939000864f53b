package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/models"
	"alfredoptarigan/exam-grader/internal/services"
)

// Configurer is the settings side of a session.
type Configurer interface {
	Settings() (services.ProviderID, bool)
	Configure(ctx context.Context, credential, provider string) error
}

type SettingsHandler struct {
	session Configurer
}

func NewSettingsHandler(session Configurer) *SettingsHandler {
	return &SettingsHandler{
		session: session,
	}
}

// HandleGet handles GET /settings. The credential itself is never echoed.
func (h *SettingsHandler) HandleGet(c *fiber.Ctx) error {
	provider, hasKey := h.session.Settings()
	return c.JSON(models.SettingsResponse{
		Provider:      string(provider),
		CredentialSet: hasKey,
	})
}

// HandleSave handles PUT /settings
func (h *SettingsHandler) HandleSave(c *fiber.Ctx) error {
	var req models.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := h.session.Configure(c.UserContext(), req.APIKey, req.Provider); err != nil {
		return err
	}

	return h.HandleGet(c)
}
