// handlers/event_routes.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"clan-portal/events"
	"clan-portal/middleware"
	"clan-portal/services"

	"github.com/gofiber/fiber/v2"
)

const (
	streamBuffer    = 64
	streamHeartbeat = 15 * time.Second
)

// parseCategories reads ?categories=clan-changed,activity. Empty means all.
func parseCategories(raw string) ([]events.Category, error) {
	names := splitList(raw)
	if len(names) == 0 {
		return events.Categories, nil
	}
	known := make(map[events.Category]bool, len(events.Categories))
	for _, c := range events.Categories {
		known[c] = true
	}
	out := make([]events.Category, 0, len(names))
	for _, n := range names {
		c := events.Category(n)
		if !known[c] {
			return nil, fmt.Errorf("unknown event category %q", n)
		}
		out = append(out, c)
	}
	return out, nil
}

// writeEvent frames e as a server-sent event named after its category.
func writeEvent(w io.Writer, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, payload)
	return err
}

// SetupEventRoutes streams bus events to the browser. A connected user with
// an id is shown online for the lifetime of the stream.
func SetupEventRoutes(app *fiber.App, bus *events.Bus, presence *services.PresenceService) {
	app.Get("/events/stream", middleware.SSEUserMiddleware(), func(c *fiber.Ctx) error {
		categories, err := parseCategories(c.Query("categories"))
		if err != nil {
			return badRequest(c, err.Error())
		}
		user, hasUser := middleware.CurrentUser(c)

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		queue := make(chan events.Event, streamBuffer)
		subs := make([]*events.Subscription, 0, len(categories))
		for _, cat := range categories {
			subs = append(subs, bus.Subscribe(cat, func(e events.Event) {
				select {
				case queue <- e:
				default:
					// slow client, drop
				}
			}))
		}
		done := c.Context().Done()

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer func() {
				for _, s := range subs {
					s.Unsubscribe()
				}
				if hasUser && presence != nil {
					if err := presence.SetOffline(user.ID); err != nil {
						slog.Warn("presence offline failed", "user", user.ID, "error", err)
					}
				}
			}()

			if hasUser && presence != nil {
				if err := presence.SetOnline(user.ID); err != nil {
					slog.Warn("presence online failed", "user", user.ID, "error", err)
				}
			}

			ticker := time.NewTicker(streamHeartbeat)
			defer ticker.Stop()

			w.WriteString(":\n\n")
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case e := <-queue:
					if err := writeEvent(w, e); err != nil {
						slog.Warn("sse encode failed", "category", e.Category, "error", err)
						continue
					}
					if err := w.Flush(); err != nil {
						return
					}
				case <-ticker.C:
					w.WriteString(":\n\n")
					if err := w.Flush(); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		})
		return nil
	})
}
