package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func whoami(c *fiber.Ctx) error {
	u, ok := CurrentUser(c)
	if !ok {
		return c.SendString("anonymous")
	}
	return c.SendString(u.ID + "/" + u.Username)
}

func run(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestUserContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(UserContextMiddleware())
	app.Get("/who", whoami)
	app.Get("/secure", RequireUser(), whoami)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if _, body := run(t, app, req); body != "anonymous" {
		t.Fatalf("body = %q", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-User-ID", "u1")
	if _, body := run(t, app, req); body != "u1/u1" {
		t.Fatalf("username fallback: %q", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Name", "Neo")
	if status, body := run(t, app, req); status != http.StatusOK || body != "u1/Neo" {
		t.Fatalf("secure = %d %q", status, body)
	}

	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	if status, _ := run(t, app, req); status != http.StatusUnauthorized {
		t.Fatalf("anonymous secure = %d", status)
	}
}

func TestGatewayAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(GatewayAuthMiddleware("s3cret"))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer s3cret", http.StatusOK},
		{"s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if status, _ := run(t, app, req); status != tt.want {
			t.Errorf("Authorization %q = %d, want %d", tt.header, status, tt.want)
		}
	}

	open := fiber.New()
	open.Use(GatewayAuthMiddleware(""))
	open.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	if status, _ := run(t, open, httptest.NewRequest(http.MethodGet, "/", nil)); status != http.StatusOK {
		t.Fatalf("disabled gateway = %d", status)
	}
}

func TestSSEUserMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/stream", SSEUserMiddleware(), whoami)

	req := httptest.NewRequest(http.MethodGet, "/stream?user_id=q1&username=Query", nil)
	if _, body := run(t, app, req); body != "q1/Query" {
		t.Fatalf("query user = %q", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/stream?user_id=q1", nil)
	req.Header.Set("X-User-ID", "h1")
	if _, body := run(t, app, req); body != "h1/h1" {
		t.Fatalf("header precedence = %q", body)
	}
}
