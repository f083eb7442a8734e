// handlers/profile_routes.go
package handlers

import (
	"clan-portal/middleware"
	"clan-portal/models"
	"clan-portal/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService) {
	me := app.Group("/profile/me", middleware.RequireUser())

	me.Get("/", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		p, err := profiles.GetOrCreate(user)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	me.Patch("/", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var u services.ProfileUpdate
		if err := c.BodyParser(&u); err != nil {
			return badRequest(c, "invalid profile payload")
		}
		if _, err := profiles.GetOrCreate(user); err != nil {
			return respondError(c, err)
		}
		p, err := profiles.UpdateProfile(user.ID, u)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	me.Post("/games", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var body struct {
			Game   string `json:"game"`
			Result string `json:"result"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid game result payload")
		}
		p, err := profiles.RecordGameResult(user.ID, body.Game, body.Result)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})

	me.Post("/achievements", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var a models.Achievement
		if err := c.BodyParser(&a); err != nil {
			return badRequest(c, "invalid achievement payload")
		}
		added, err := profiles.AddAchievement(user.ID, a)
		if err != nil {
			return respondError(c, err)
		}
		status := fiber.StatusOK
		if added {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(fiber.Map{"added": added})
	})

	me.Post("/activity", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		var a models.Activity
		if err := c.BodyParser(&a); err != nil {
			return badRequest(c, "invalid activity payload")
		}
		p, err := profiles.AddActivity(user.ID, a)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p.RecentActivity)
	})

	app.Get("/profiles/:id", func(c *fiber.Ctx) error {
		p, err := profiles.Get(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	})
}
