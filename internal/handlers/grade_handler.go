package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const defaultTotalMaxScore = 100

type GradeHandler struct {
	session ClientSource
	uploads *UploadReader
}

func NewGradeHandler(session ClientSource, uploads *UploadReader) *GradeHandler {
	return &GradeHandler{
		session: session,
		uploads: uploads,
	}
}

// HandleGrade handles POST /grade
func (h *GradeHandler) HandleGrade(c *fiber.Ctx) error {
	images, err := h.uploads.Images(c, "images")
	if err != nil {
		return err
	}

	totalMaxScore := float64(defaultTotalMaxScore)
	if raw := strings.TrimSpace(c.FormValue("total_max_score")); raw != "" {
		totalMaxScore, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "total_max_score must be a number",
			})
		}
	}

	result, err := h.session.Client().GradeExam(c.UserContext(), images, totalMaxScore)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
