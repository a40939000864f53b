package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/services"
)

// Session is everything the routes need from the orchestration session.
type Session interface {
	ClientSource
	Configurer
}

var _ Session = (*services.Session)(nil)

// Register mounts the API under /api/v1.
func Register(app *fiber.App, session Session, maxImages int) {
	uploads := NewUploadReader(maxImages)

	gradeHandler := NewGradeHandler(session, uploads)
	recognitionHandler := NewRecognitionHandler(session, uploads)
	tutorHandler := NewTutorHandler(session, uploads)
	settingsHandler := NewSettingsHandler(session)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		provider, hasKey := session.Settings()
		return c.JSON(fiber.Map{
			"status":         "healthy",
			"provider":       provider,
			"credential_set": hasKey,
			"time":           time.Now(),
		})
	})

	api.Get("/settings", settingsHandler.HandleGet)
	api.Put("/settings", settingsHandler.HandleSave)

	api.Post("/grade", gradeHandler.HandleGrade)
	api.Post("/ocr", recognitionHandler.HandleText)
	api.Post("/ocr/batch", recognitionHandler.HandleBatch)
	api.Post("/ocr/table", recognitionHandler.HandleTable)
	api.Post("/homework", tutorHandler.HandleHomework)
	api.Post("/essay", tutorHandler.HandleEssay)
	api.Post("/essay/guide", tutorHandler.HandleEssayGuide)
	api.Post("/essay/examples", tutorHandler.HandleEssayExamples)
	api.Post("/tutor", tutorHandler.HandleTutor)
	api.Post("/overlay", HandleOverlay)
}

