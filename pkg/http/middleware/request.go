package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestId = "X-Request-Id"

type requestIdKey struct{}

// RequestMiddleware ensures every request carries an X-Request-Id and makes it
// available through both fiber locals and the user context.
func RequestMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestId := c.Get(HeaderRequestId)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Request().Header.Set(HeaderRequestId, requestId)
		c.Set(HeaderRequestId, requestId)
		c.Locals(REQUEST_ID, requestId)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIdKey{}, requestId))
		return c.Next()
	}
}

// RequestIdFrom returns the request id stored by RequestMiddleware.
func RequestIdFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIdKey{}).(string)
	return id
}
