package middleware

import (
	"strings"
	"time"

	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs one structured line per request. Health and metrics paths are
// skipped.
func AccessLogMiddleware(enabled bool) fiber.Handler {
	excludedPaths := []string{
		"/health",
		"/metrics",
		"/api/v1/health",
	}

	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, rule := range excludedPaths {
			if path == rule || strings.HasPrefix(path, rule+"/") {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()

		log.WithContext(c.UserContext()).Infow("http request",
			"method", c.Method(),
			"path", path,
			"query", string(c.Request().URI().QueryString()),
			"status", c.Response().StatusCode(),
			"ip", c.IP(),
			"request_id", c.Locals(REQUEST_ID),
			"latency", time.Since(start).String(),
		)
		return err
	}
}
