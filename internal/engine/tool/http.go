package tool

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

/**
 * @file: http.go
 * @description: http tool
 */

// QueryInt reads a positive integer query parameter, falling back to def.
func QueryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
