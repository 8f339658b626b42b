package routes

import (
	"context"
	"time"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/metrics"
	"geo-attendance-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the route setup needs to build its handlers.
type Deps struct {
	DB         *gorm.DB
	JWTSecret  string
	Zone       *time.Location
	LateCutoff config.Cutoff
	Clock      usecase.Clock
	Metrics    *metrics.Registry
}

// Setup mounts /health, /metrics and the /api/v1 routes.
func Setup(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := config.Ping(ctx, deps.DB); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "message": "database unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics.Gatherer(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	SetupAttendanceRoutes(api, deps)
	SetupLocationRoutes(api, deps)
}
