package tool

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/pkg/http/jwt"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

/**
 * @file: token.go
 * @description: token tool
 */

// ClaimsFrom returns the admin claims set by the authorization middleware.
func ClaimsFrom(c *fiber.Ctx) (*jwt.AuthClaims, bool) {
	claims, ok := c.Locals(middleware.CLAIMS).(*jwt.AuthClaims)
	return claims, ok && claims != nil
}
