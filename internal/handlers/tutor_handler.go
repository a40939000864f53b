package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/models"
)

const (
	defaultEssayGrade = 6
	defaultEssayType  = models.EssayNarrative
)

type TutorHandler struct {
	session ClientSource
	uploads *UploadReader
}

func NewTutorHandler(session ClientSource, uploads *UploadReader) *TutorHandler {
	return &TutorHandler{
		session: session,
		uploads: uploads,
	}
}

// HandleHomework handles POST /homework
func (h *TutorHandler) HandleHomework(c *fiber.Ctx) error {
	image, err := h.uploads.Image(c, "image")
	if err != nil {
		return err
	}

	text, err := h.session.Client().SolveHomework(c.UserContext(), image, c.FormValue("instruction"))
	if err != nil {
		return err
	}

	return c.JSON(models.TextResponse{Text: text})
}

// HandleEssay handles POST /essay
func (h *TutorHandler) HandleEssay(c *fiber.Ctx) error {
	params, err := h.essayParams(c)
	if err != nil {
		return err
	}

	text, err := h.session.Client().GenerateEssay(c.UserContext(), params)
	if err != nil {
		return err
	}

	return c.JSON(models.TextResponse{Text: text})
}

// HandleEssayGuide handles POST /essay/guide
func (h *TutorHandler) HandleEssayGuide(c *fiber.Ctx) error {
	params, err := h.essayParams(c)
	if err != nil {
		return err
	}

	guide, err := h.session.Client().GenerateEssayGuide(c.UserContext(), params)
	if err != nil {
		return err
	}

	return c.JSON(models.TextResponse{Text: guide})
}

// essayParams reads the essay form. The topic image is only looked for in
// multipart requests.
func (h *TutorHandler) essayParams(c *fiber.Ctx) (models.EssayParams, error) {
	params := models.EssayParams{
		Topic:     c.FormValue("topic"),
		Grade:     defaultEssayGrade,
		EssayType: defaultEssayType,
		WordCount: strings.TrimSpace(c.FormValue("word_count")),
		Language:  models.Language(strings.ToLower(strings.TrimSpace(c.FormValue("language")))),
	}

	if raw := strings.TrimSpace(c.FormValue("grade")); raw != "" {
		grade, err := strconv.Atoi(raw)
		if err != nil {
			return params, fiber.NewError(fiber.StatusBadRequest, "grade must be a whole number")
		}
		params.Grade = grade
	}
	if raw := strings.TrimSpace(c.FormValue("essay_type")); raw != "" {
		params.EssayType = models.EssayType(raw)
	}

	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		image, err := h.uploads.Image(c, "image")
		if err != nil {
			return params, err
		}
		if len(image.Data) > 0 {
			params.Image = &image
		}
	}

	return params, nil
}

// HandleEssayExamples handles POST /essay/examples
func (h *TutorHandler) HandleEssayExamples(c *fiber.Ctx) error {
	var req models.EssayExamplesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	examples, err := h.session.Client().GenerateEssayExamples(c.UserContext(), req.Topic)
	if err != nil {
		return err
	}

	return c.JSON(examples)
}

// HandleTutor handles POST /tutor
func (h *TutorHandler) HandleTutor(c *fiber.Ctx) error {
	var req models.TutorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	text, err := h.session.Client().Tutor(c.UserContext(), req.Question, req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(models.TextResponse{Text: text})
}
