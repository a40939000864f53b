package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/exam-grader/internal/models"
	"alfredoptarigan/exam-grader/internal/services"
)

const requestIDKey = "request_id"

// RequestID tags every request with an X-Request-ID, keeping the caller's
// value when one is sent.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

// ErrorHandler renders every error as JSON. Orchestration errors carry their
// kind, and reconfigure is set when the credential has to be re-entered.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	resp := models.ErrorResponse{Error: err.Error()}

	var fe *fiber.Error
	var se *services.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &se):
		code = StatusForKind(se.Kind)
		resp.Kind = string(se.Kind)
		resp.Reconfigure = services.NeedsCredential(err)
	}

	resp.Code = code
	if id, ok := c.Locals(requestIDKey).(string); ok {
		resp.RequestID = id
	}

	return c.Status(code).JSON(resp)
}

func StatusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindCredential:
		return fiber.StatusUnauthorized
	case services.KindBusy:
		return fiber.StatusConflict
	case services.KindNetwork:
		return fiber.StatusGatewayTimeout
	case services.KindParse, services.KindProvider:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
