package middleware

import (
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/gofiber/fiber/v2"
)

// Locals keys shared between handlers and middleware.
const (
	DETAIL     = "detail"
	OPERATION  = "operation"
	REQUEST_ID = "request_id"
	CLAIMS     = "claims"
)

// UnifiedResponseMiddleware renders c.Locals(DETAIL) into the success envelope
// for handlers that do not write a body themselves.
func UnifiedResponseMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status == 0 {
			c.Status(fiber.StatusOK)
			status = fiber.StatusOK
		}
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		if detail := c.Locals(DETAIL); detail != nil {
			return http.WithRepJSON(c, detail)
		}
		if c.Locals(OPERATION) != nil {
			return http.WithRepNotDetail(c)
		}
		return nil
	}
}
