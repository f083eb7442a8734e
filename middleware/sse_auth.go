// middleware/sse_auth.go
package middleware

import (
	"strings"

	"clan-portal/models"

	"github.com/gofiber/fiber/v2"
)

// SSEUserMiddleware attaches the user context for event streams. Browsers'
// EventSource cannot set headers, so user_id and username may come from the
// query string; X-User-* headers win when present.
//
// Usage:
//
//	app.Get("/events/stream", middleware.SSEUserMiddleware(), streamHandler)
func SSEUserMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := models.User{
			ID:       firstNonEmpty(c.Get("X-User-ID"), c.Query("user_id")),
			Username: firstNonEmpty(c.Get("X-User-Name"), c.Query("username")),
			Platform: firstNonEmpty(c.Get("X-User-Platform"), c.Query("platform")),
		}
		setUser(c, user)
		return c.Next()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
