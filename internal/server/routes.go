package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"outreach/internal/handlers"
	"outreach/internal/handlers/api"
	"outreach/internal/middleware"
)

// Services are the application services behind the routes.
type Services struct {
	DB          handlers.Pinger
	Carts       api.CartService
	Prospecting api.ProspectingService
	Lifecycle   api.LifecycleService
	EmailList   api.EmailListService
	EmailDrafts api.EmailDraftService
	Campaigns   api.CampaignService
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(svc Services) {
	// Initialize middleware
	identity := middleware.NewIdentityMiddleware(s.Cfg.DevFakeUserID, s.Cfg.IsDev())

	// Initialize handlers
	probeHandler := handlers.NewProbeHandler(svc.DB)
	cartHandler := api.NewCartHandler(svc.Carts, svc.Lifecycle)
	prospectingHandler := api.NewProspectingHandler(svc.Prospecting, svc.Lifecycle)
	emailHandler := api.NewEmailHandler(svc.EmailList, svc.EmailDrafts)
	campaignHandler := api.NewCampaignHandler(svc.Campaigns)

	// Operational routes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := s.App.Group("/api/v1")

	// Cart routes - scoped to the caller's session
	v1.Get("/carts", identity.RequireSession, cartHandler.List)
	v1.Get("/carts/count", identity.RequireSession, cartHandler.Count)
	v1.Delete("/carts/bulk", identity.RequireSession, cartHandler.BulkDelete)
	v1.Post("/carts/process", identity.RequireSession, cartHandler.Process)

	// Prospecting routes
	v1.Get("/metrics", prospectingHandler.List)
	v1.Get("/metrics/stats", prospectingHandler.Stats)
	v1.Get("/metrics/filter-options", prospectingHandler.FilterOptions)
	v1.Get("/metrics/processing", prospectingHandler.Processing)
	v1.Post("/metrics/toggle-processing", prospectingHandler.ToggleProcessing)
	v1.Post("/metrics/blacklist-processed", prospectingHandler.BlacklistProcessed)

	// Email routes
	v1.Get("/emails", emailHandler.List)
	v1.Get("/emails/filter-options", emailHandler.FilterOptions)
	v1.Get("/emails/:id", emailHandler.Get)
	v1.Post("/emails/:id/generate", emailHandler.Generate)
	v1.Put("/emails/:id/generations", emailHandler.SaveGeneration)

	// Campaign routes
	v1.Get("/campaigns", campaignHandler.List)
	v1.Post("/campaigns", campaignHandler.Create)
	v1.Get("/campaigns/:id", identity.OptionalSession, campaignHandler.Get)
	v1.Put("/campaigns/:id", campaignHandler.Update)
	v1.Delete("/campaigns/:id", campaignHandler.Delete)
}
