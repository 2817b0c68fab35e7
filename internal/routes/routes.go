package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/inforia/backend/internal/config"
	"github.com/inforia/backend/internal/handlers"
	"github.com/inforia/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	planHandler *handlers.PlanHandler,
	provisionHandler *handlers.ProvisionHandler,
	notificationHandler *handlers.NotificationHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (public)
	api.Get("/health", healthHandler.Health)

	// Report generation is the expensive path: tighter per-IP limit on
	// top of the general one.
	reports := api.Group("/reports", middleware.JWTProtected(cfg))
	reports.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	reports.Post("/generate", reportHandler.Generate)

	// Plan management (protected)
	api.Post("/plan/renew", middleware.JWTProtected(cfg), planHandler.Renew)
	api.Get("/plan/quota", middleware.JWTProtected(cfg), planHandler.Quota)

	// CRM provisioning after OAuth sign-in (protected)
	api.Post("/crm/provision", middleware.JWTProtected(cfg), provisionHandler.ProvisionCRM)

	// Operational endpoints (admin token, no JWT: called by schedulers)
	admin := api.Group("/notifications", middleware.AdminRequired(cfg))
	admin.Post("/low-quota", notificationHandler.SweepLowQuota)
}
