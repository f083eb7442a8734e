// middleware/auth.go
package middleware

import (
	"log/slog"
	"strings"

	"clan-portal/models"

	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// UserContextMiddleware reads the identity the auth collaborator forwards in
// X-User-* headers and attaches it to the request. Anonymous requests pass
// through; use RequireUser on routes that act on behalf of a user.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := models.User{
			ID:       strings.TrimSpace(c.Get("X-User-ID")),
			Username: strings.TrimSpace(c.Get("X-User-Name")),
			Email:    strings.TrimSpace(c.Get("X-User-Email")),
			Platform: strings.TrimSpace(c.Get("X-User-Platform")),
		}
		setUser(c, user)
		return c.Next()
	}
}

// RequireUser rejects requests that carry no user id.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			slog.Debug("user context missing", "path", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID: request must carry the user context",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the user attached by UserContextMiddleware or
// SSEUserMiddleware.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	u, ok := c.Locals(userLocalsKey).(models.User)
	if !ok || u.ID == "" {
		return models.User{}, false
	}
	return u, true
}

func setUser(c *fiber.Ctx, u models.User) {
	// header and query values alias fasthttp's request buffer
	u = models.User{
		ID:       strings.Clone(u.ID),
		Username: strings.Clone(u.Username),
		Email:    strings.Clone(u.Email),
		Platform: strings.Clone(u.Platform),
	}
	if u.Username == "" {
		u.Username = u.ID
	}
	c.Locals(userLocalsKey, u)
}
