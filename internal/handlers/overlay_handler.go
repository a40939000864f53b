package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/exam-grader/internal/models"
)

// HandleOverlay handles POST /overlay, mapping a normalized box onto a
// rendered image so clients place score annotations the same way.
func HandleOverlay(c *fiber.Ctx) error {
	var req models.OverlayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.ImageWidth <= 0 || req.ImageHeight <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "image_width and image_height must be positive",
		})
	}

	return c.JSON(req.Box2D.Place(req.ImageWidth, req.ImageHeight))
}
