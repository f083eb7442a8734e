// handlers/community_routes.go
package handlers

import (
	"clan-portal/middleware"
	"clan-portal/services"

	"github.com/gofiber/fiber/v2"
)

// Community bundles the services behind the chat, presence and live stats
// endpoints.
type Community struct {
	Chat     *services.ChatService
	Presence *services.PresenceService
	Feed     *services.ActivityFeed
	Counters *services.LiveCounters
	Voice    *services.VoiceChannels
	Clans    *services.ClanService
}

func SetupCommunityRoutes(app *fiber.App, cm Community) {
	app.Get("/chat", func(c *fiber.Ctx) error {
		return c.JSON(cm.Chat.Recent(queryLimit(c, 50, 100)))
	})

	app.Post("/chat", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var body struct {
			Message string `json:"message"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid chat payload")
		}
		msg, err := cm.Chat.Post(user.Username, body.Message)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	})

	app.Post("/presence/online", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		if err := cm.Presence.SetOnline(user.ID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Post("/presence/offline", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		if err := cm.Presence.SetOffline(user.ID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get("/presence/:id", func(c *fiber.Ctx) error {
		p, err := cm.Presence.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	app.Get("/activity", func(c *fiber.Ctx) error {
		return c.JSON(cm.Feed.Entries())
	})

	app.Get("/voice", func(c *fiber.Ctx) error {
		return c.JSON(cm.Voice.Snapshot())
	})

	app.Get("/stats/live", func(c *fiber.Ctx) error {
		snap := cm.Counters.Snapshot()
		return c.JSON(fiber.Map{
			"onlineNow":    snap.OnlineNow,
			"totalMembers": snap.TotalMembers,
			"clanMembers":  cm.Clans.TotalMembers(),
			"usersOnline":  len(cm.Presence.Online()),
		})
	})
}
