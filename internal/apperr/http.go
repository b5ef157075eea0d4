package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Respond writes err as a JSON error response. Tagged errors keep their
// code and message; anything else is collapsed to a generic 500 so
// internals never leak to the client.
func Respond(c *fiber.Ctx, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return c.Status(HTTPStatus(e.Kind)).JSON(fiber.Map{
			"code":    e.Code,
			"message": e.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"code":    CodeInternal,
		"message": "internal error",
	})
}
