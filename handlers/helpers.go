// handlers/helpers.go
package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"clan-portal/services"

	"github.com/gofiber/fiber/v2"
)

type errorKind struct {
	err     error
	status  int
	code    string
	message string
}

// errorKinds maps service error kinds to responses, most specific first.
var errorKinds = []errorKind{
	{services.ErrValidation, fiber.StatusBadRequest, "validation", ""},
	{services.ErrNotFound, fiber.StatusNotFound, "not_found", "Not found"},
	{services.ErrClosed, fiber.StatusConflict, "clan_closed", "This clan is not recruiting"},
	{services.ErrEmptyClan, fiber.StatusConflict, "clan_empty", "This clan has no members left"},
	{services.ErrAlreadyMember, fiber.StatusConflict, "already_member", "You are already a member of this clan"},
	{services.ErrNotOpen, fiber.StatusConflict, "registration_closed", "Registration is closed for this tournament"},
	{services.ErrFull, fiber.StatusConflict, "tournament_full", "Tournament is full"},
	{services.ErrAlreadyRegistered, fiber.StatusConflict, "already_registered", "You are already registered for this tournament"},
	{services.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition", ""},
	{services.ErrDuplicateID, fiber.StatusConflict, "duplicate_id", ""},
	{services.ErrPersistence, fiber.StatusServiceUnavailable, "persistence", "Storage is unavailable, try again"},
}

// NewApp returns the portal's fiber app. Request values are retained by
// stores, presence and event streams, so fiber must not reuse their buffers.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               "clan-portal",
		DisableStartupMessage: true,
		Immutable:             true,
	})
}

// respondError writes err as a JSON error body with a status derived from its
// kind. Unknown errors are 500s.
func respondError(c *fiber.Ctx, err error) error {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		msg := k.message
		if msg == "" {
			msg = err.Error()
		}
		if k.status >= fiber.StatusInternalServerError {
			slog.Error("request failed", "path", c.Path(), "error", err)
		}
		return c.Status(k.status).JSON(fiber.Map{
			"error": msg,
			"code":  k.code,
			"cause": err.Error(),
		})
	}
	slog.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "validation"})
}

// splitList parses "a,b, c" query values.
func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func queryLimit(c *fiber.Ctx, def, maxLimit int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxLimit)
}
