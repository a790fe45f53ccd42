package middleware

import (
	"context"
	"crypto/subtle"

	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/gofiber/fiber/v2"
)

const HeaderPluginsToken = "X-OneUpdate-Plugins-Token"

// KeySource returns the key incoming tokens are compared against.
type KeySource func(ctx context.Context) (string, error)

// PluginTokenMiddleware authenticates governing-site calls to a brand site.
// The token is taken from the X-OneUpdate-Plugins-Token header or, when
// allowQuery is set, from the secret query parameter, and compared in
// constant time.
func PluginTokenMiddleware(key KeySource, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(HeaderPluginsToken)
		if token == "" && allowQuery {
			token = c.Query("secret")
		}
		if token == "" {
			return http.WithRepErrMsg(c, http.TokenBeEmpty.Code, http.TokenBeEmpty.Msg, c.Path())
		}

		expected, err := key(c.UserContext())
		if err != nil {
			log.Errorw("load site public key failed", "error", err)
			return http.WithRepErrMsg(c, http.InternalError.Code, http.InternalError.Msg, c.Path())
		}
		if !TokenEqual(expected, token) {
			return http.WithRepErrMsg(c, http.PluginTokenInvalid.Code, http.PluginTokenInvalid.Msg, c.Path())
		}
		return c.Next()
	}
}

// TokenEqual compares two tokens in constant time. An empty expected key never
// matches.
func TokenEqual(expected, got string) bool {
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
