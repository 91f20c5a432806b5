package response

import (
	"backoffice/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

func Response(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func ResponseSuccess(c *fiber.Ctx, status int, data interface{}) error {

	if data != nil {
		return c.Status(status).JSON(fiber.Map{
			"success": true,
			"data":    data,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
	})
}

// ResponseError maps an application error to its HTTP status and public
// message. Internal causes never reach the client.
func ResponseError(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"success": false,
		"error":   apperr.PublicMessage(err),
		"kind":    apperr.KindOf(err),
	})
}
