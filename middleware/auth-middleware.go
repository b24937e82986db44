package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/auth"
	"github.com/rayansaffron/storefront/response"
)

const identityKey = "identity"

type TokenParser interface {
	Parse(tokenStr string) (*auth.Identity, error)
}

// Auth requires a valid bearer token and stores the caller's identity.
func Auth(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenStr) == "" {
			return response.Error(c, apperr.Errorf(apperr.KindUnauthorized, "middleware.Auth", "Access denied. No token provided."))
		}

		identity, err := tokens.Parse(strings.TrimSpace(tokenStr))
		if err != nil {
			return response.Error(c, apperr.Errorf(apperr.KindUnauthorized, "middleware.Auth", "Invalid or expired token"))
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// Admin must run after Auth.
func Admin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok || !identity.IsAdmin() {
			return response.Error(c, apperr.Errorf(apperr.KindForbidden, "middleware.Admin", "Admin access required"))
		}
		return c.Next()
	}
}

func CurrentIdentity(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*auth.Identity)
	return identity, ok && identity != nil
}
