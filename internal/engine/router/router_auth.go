package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/tool"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth", auth)
	{
		authGroup.Get("/whoami", rt.whoami)
		authGroup.Post("/revoke", rt.revoke)
	}
}

func (rt *Router) whoami(c *fiber.Ctx) error {
	claims, ok := tool.ClaimsFrom(c)
	if !ok {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	c.Locals(middleware.DETAIL, fiber.Map{
		"operator":   claims.Operator,
		"token_id":   claims.ID,
		"expires_at": claims.ExpiresAt,
	})
	return nil
}

// revoke blacklists the calling token until it expires
func (rt *Router) revoke(c *fiber.Ctx) error {
	claims, ok := tool.ClaimsFrom(c)
	if !ok || claims.ExpiresAt == nil {
		return http.WithRepErrMsg(c, http.Unauthorized.Code, http.Unauthorized.Msg, c.Path())
	}
	if err := rt.Tokens.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.OPERATION, "revoke token")
	return nil
}
