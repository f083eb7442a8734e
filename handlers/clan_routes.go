// handlers/clan_routes.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"clan-portal/middleware"
	"clan-portal/models"
	"clan-portal/services"
	"clan-portal/utils"

	"github.com/gofiber/fiber/v2"
)

var allPlatforms = []string{
	models.PlatformPC,
	models.PlatformPlayStation,
	models.PlatformXbox,
	models.PlatformNintendo,
	models.PlatformMobile,
}

type platformView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Clans int    `json:"clans"`
}

func SetupClanRoutes(app *fiber.App, clans *services.ClanService, profiles *services.ProfileService) {
	// GET /clans?platform=pc,xbox&game=Valorant&q=ninja
	app.Get("/clans", func(c *fiber.Ctx) error {
		if q := c.Query("q"); q != "" {
			return c.JSON(clans.Search(q))
		}
		platforms, games := splitList(c.Query("platform")), splitList(c.Query("game"))
		if len(platforms) == 0 && len(games) == 0 {
			return c.JSON(clans.List())
		}
		// An omitted query dimension means "any".
		if len(platforms) == 0 {
			platforms = allPlatforms
		}
		if len(games) == 0 {
			for _, cl := range clans.List() {
				games = append(games, cl.Game)
			}
		}
		return c.JSON(clans.Filter(platforms, games))
	})

	app.Get("/clans/top", func(c *fiber.Ctx) error {
		return c.JSON(clans.Top(queryLimit(c, 5, 50)))
	})

	// platform filter options with the number of clans on each
	app.Get("/clans/platforms", func(c *fiber.Ctx) error {
		list := clans.List()
		out := make([]platformView, 0, len(allPlatforms))
		for _, p := range allPlatforms {
			v := platformView{ID: p, Label: utils.PlatformLabel(p)}
			for _, cl := range list {
				if cl.SupportsPlatform(p) {
					v.Clans++
				}
			}
			out = append(out, v)
		}
		return c.JSON(out)
	})

	app.Get("/clans/:id", func(c *fiber.Ctx) error {
		clan, err := clans.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(clan)
	})

	secured := app.Group("/clans", middleware.RequireUser())

	secured.Post("/", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var in services.CreateClanInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid clan payload")
		}
		previous := currentClanID(profiles, user.ID)
		clan, err := clans.CreateClan(in)
		if err != nil {
			return respondError(c, err)
		}
		if err := joinProfile(profiles, user, clan, "Leader"); err != nil {
			slog.Warn("clan created but leader profile not updated", "clan", clan.ID, "user", user.ID, "error", err)
			return c.Status(fiber.StatusCreated).JSON(clan)
		}
		leavePrevious(clans, previous, user.ID)
		return c.Status(fiber.StatusCreated).JSON(clan)
	})

	secured.Post("/:id/join", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		clanID := c.Params("id")
		previous := currentClanID(profiles, user.ID)
		if previous == clanID {
			return respondError(c, fmt.Errorf("clan %s: %w", clanID, services.ErrAlreadyMember))
		}
		clan, err := clans.JoinClan(clanID, user.ID)
		if err != nil {
			return respondError(c, err)
		}
		if err := joinProfile(profiles, user, clan, "Member"); err != nil {
			if _, lerr := clans.LeaveClan(clan.ID, user.ID); lerr != nil {
				err = errors.Join(err, lerr)
			}
			return respondError(c, err)
		}
		leavePrevious(clans, previous, user.ID)
		return c.JSON(clan)
	})

	secured.Post("/:id/leave", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		clan, err := clans.LeaveClan(c.Params("id"), user.ID)
		if err != nil {
			return respondError(c, err)
		}
		if p, err := profiles.Get(user.ID); err == nil && p.Clan != nil && p.Clan.ClanID == clan.ID {
			if _, err := profiles.ClearClanMembership(user.ID); err != nil {
				return respondError(c, err)
			}
		}
		return c.JSON(clan)
	})

	secured.Patch("/:id/stats", func(c *fiber.Ctx) error {
		var stats services.ClanStats
		if err := c.BodyParser(&stats); err != nil {
			return badRequest(c, "invalid stats payload")
		}
		clan, err := clans.UpdateStats(c.Params("id"), stats)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(clan)
	})
}

func joinProfile(profiles *services.ProfileService, user models.User, clan *models.Clan, role string) error {
	if _, err := profiles.GetOrCreate(user); err != nil {
		return err
	}
	_, err := profiles.SetClanMembership(user.ID, clan, role)
	return err
}

// currentClanID returns the clan on the user's profile, or "".
func currentClanID(profiles *services.ProfileService, userID string) string {
	p, err := profiles.Get(userID)
	if err != nil || p.Clan == nil {
		return ""
	}
	return p.Clan.ClanID
}

// leavePrevious releases the seat a user held before switching clans.
func leavePrevious(clans *services.ClanService, clanID, userID string) {
	if clanID == "" {
		return
	}
	if _, err := clans.LeaveClan(clanID, userID); err != nil {
		slog.Warn("previous clan not left", "clan", clanID, "user", userID, "error", err)
	}
}
