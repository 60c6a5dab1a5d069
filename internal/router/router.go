package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/entbridge-go-api/internal/config"
	"github.com/noah-isme/entbridge-go-api/internal/handler"
	"github.com/noah-isme/entbridge-go-api/internal/middleware"
	"github.com/noah-isme/entbridge-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TestHandler     *handler.TestHandler
	HomeworkHandler *handler.HomeworkHandler
	AdminHandler    *handler.AdminHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	authed := api.Group("", jwtMiddleware)

	if deps.TestHandler != nil {
		subjects := authed.Group("/subjects")
		subjects.Use(middleware.RateLimit("tests", 30, time.Minute))
		deps.TestHandler.Register(subjects)

		results := authed.Group("/results")
		deps.TestHandler.RegisterResults(results)
	}

	if deps.HomeworkHandler != nil {
		homework := authed.Group("/homework")
		homework.Use(middleware.RateLimit("homework", 30, time.Minute))
		deps.HomeworkHandler.Register(homework)
	}

	admin := authed.Group("/admin", middleware.RequireRole("admin"))
	if deps.HomeworkHandler != nil {
		deps.HomeworkHandler.RegisterAdmin(admin.Group("/homework"))
		deps.HomeworkHandler.RegisterReview(admin.Group("/submissions"))
	}
	if deps.AdminHandler != nil {
		deps.AdminHandler.Register(admin)
	}
}
