package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/handler"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Influencer *handler.InfluencerHandler
	Stats      *handler.StatsHandler
	Outreach   *handler.OutreachHandler
	Discovery  *handler.DiscoveryHandler
	Health     *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Probes and metrics sit outside the API group and its rate limits
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	readLimit := middleware.NewReadRateLimiter().Handler()
	runLimit := middleware.NewDiscoveryRateLimiter().Handler()

	// API routes
	api := app.Group("/api")

	// Influencer directory routes
	api.Get("/influencers", h.Influencer.List, readLimit)
	api.Get("/influencers/:id", h.Influencer.GetByID, readLimit)

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, readLimit)

	// Outreach routes
	api.Get("/outreach/targets", h.Outreach.Targets, readLimit)

	// Discovery routes
	api.Post("/discovery/run", h.Discovery.Run, runLimit)
	api.Get("/discovery/status", h.Discovery.Status, readLimit)
}
