package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-progress-api/internal/config"
	"github.com/noah-isme/gema-progress-api/internal/database"
	"github.com/noah-isme/gema-progress-api/internal/handler"
	"github.com/noah-isme/gema-progress-api/internal/middleware"
	"github.com/noah-isme/gema-progress-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseProgressHandler *handler.CourseProgressHandler
	SubmissionHandler     *handler.SubmissionHandler
	GradingHandler        *handler.GradingHandler
	StudentStatsHandler   *handler.StudentStatsHandler
	SeedHandler           *handler.SeedHandler
	JWTMiddleware         fiber.Handler
	HealthChecks          []database.Check
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks...))
	app.Get("/metrics", observability.MetricsHandler())

	// Seed tooling authenticates with its own operator token.
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(app.Group("/api/tools/seed"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	student := middleware.RequireRole(middleware.RoleStudent)
	mentor := middleware.RequireRole(middleware.RoleMentor, middleware.RoleAdmin)
	submissions := middleware.RateLimit("submissions", cfg.SubmissionRateMax, time.Minute)

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.CourseProgressHandler != nil {
		deps.CourseProgressHandler.Register(v2.Group("/courses", student))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterAssessments(v2.Group("/assessments", student, submissions))
		deps.SubmissionHandler.RegisterWeeks(v2.Group("/weeks", student, submissions))
	}

	if deps.StudentStatsHandler != nil {
		deps.StudentStatsHandler.Register(v2.Group("/student", student))
	}

	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(v2.Group("/mentor", mentor))
	}
}
