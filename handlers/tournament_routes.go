// handlers/tournament_routes.go
package handlers

import (
	"fmt"
	"log/slog"

	"clan-portal/middleware"
	"clan-portal/models"
	"clan-portal/services"

	"github.com/gofiber/fiber/v2"
)

type tournamentView struct {
	*models.Tournament
	FillRate int `json:"fillRate"`
}

func viewTournaments(svc *services.TournamentService, list []*models.Tournament) []tournamentView {
	out := make([]tournamentView, 0, len(list))
	for _, t := range list {
		out = append(out, tournamentView{Tournament: t, FillRate: svc.FillRate(t)})
	}
	return out
}

func SetupTournamentRoutes(app *fiber.App, tournaments *services.TournamentService, profiles *services.ProfileService) {
	// GET /tournaments?status=registration&game=Valorant&platform=pc
	app.Get("/tournaments", func(c *fiber.Ctx) error {
		list := tournaments.Filter(c.Query("status"), c.Query("game"), c.Query("platform"))
		return c.JSON(viewTournaments(tournaments, list))
	})

	app.Get("/tournaments/upcoming", func(c *fiber.Ctx) error {
		limit := queryLimit(c, 10, 100)
		list := make([]*models.Tournament, 0, limit)
		for t := range tournaments.Upcoming() {
			list = append(list, t)
			if len(list) == limit {
				break
			}
		}
		return c.JSON(viewTournaments(tournaments, list))
	})

	app.Get("/tournaments/live", func(c *fiber.Ctx) error {
		return c.JSON(viewTournaments(tournaments, tournaments.Live()))
	})

	app.Get("/tournaments/mine", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		return c.JSON(tournaments.UserRegistrations(user.ID))
	})

	app.Get("/tournaments/:id", func(c *fiber.Ctx) error {
		t, err := tournaments.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tournamentView{Tournament: t, FillRate: tournaments.FillRate(t)})
	})

	app.Get("/tournaments/:id/participants", func(c *fiber.Ctx) error {
		regs, err := tournaments.Participants(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(regs)
	})

	app.Get("/tournaments/:id/registered", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		return c.JSON(fiber.Map{"registered": tournaments.IsRegistered(c.Params("id"), user.ID)})
	})

	app.Post("/tournaments", middleware.RequireUser(), func(c *fiber.Ctx) error {
		var in services.CreateTournamentInput
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "invalid tournament payload")
		}
		t, err := tournaments.CreateTournament(in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	})

	app.Post("/tournaments/:id/register", middleware.RequireUser(), func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		reg, err := tournaments.Register(c.Params("id"), user.ID, user.Username)
		if err != nil {
			return respondError(c, err)
		}
		if t, err := tournaments.Get(reg.TournamentID); err == nil {
			if _, err := profiles.GetOrCreate(user); err == nil {
				_, err = profiles.AddActivity(user.ID, models.Activity{
					Icon:    "trophy",
					Message: fmt.Sprintf("Registered for %s", t.Name),
				})
				if err != nil {
					slog.Warn("registration activity not recorded", "user", user.ID, "error", err)
				}
			}
		}
		return c.Status(fiber.StatusCreated).JSON(reg)
	})

	app.Patch("/tournaments/:id/status", middleware.RequireUser(), func(c *fiber.Ctx) error {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid status payload")
		}
		t, err := tournaments.UpdateStatus(c.Params("id"), body.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(t)
	})
}
