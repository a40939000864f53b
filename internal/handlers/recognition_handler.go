package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/models"
)

type RecognitionHandler struct {
	session ClientSource
	uploads *UploadReader
}

func NewRecognitionHandler(session ClientSource, uploads *UploadReader) *RecognitionHandler {
	return &RecognitionHandler{
		session: session,
		uploads: uploads,
	}
}

// HandleText handles POST /ocr
func (h *RecognitionHandler) HandleText(c *fiber.Ctx) error {
	image, err := h.uploads.Image(c, "image")
	if err != nil {
		return err
	}

	text, err := h.session.Client().RecognizeText(c.UserContext(), image)
	if err != nil {
		return err
	}

	return c.JSON(models.TextResponse{Text: text})
}

// HandleBatch handles POST /ocr/batch
func (h *RecognitionHandler) HandleBatch(c *fiber.Ctx) error {
	images, err := h.uploads.Images(c, "images")
	if err != nil {
		return err
	}

	texts, err := h.session.Client().RecognizeTextBatch(c.UserContext(), images)
	if err != nil {
		return err
	}

	return c.JSON(models.BatchTextResponse{Texts: texts})
}

// HandleTable handles POST /ocr/table
func (h *RecognitionHandler) HandleTable(c *fiber.Ctx) error {
	image, err := h.uploads.Image(c, "image")
	if err != nil {
		return err
	}

	markdown, err := h.session.Client().RecognizeTable(c.UserContext(), image)
	if err != nil {
		return err
	}

	return c.JSON(models.TableResponse{Markdown: markdown})
}
