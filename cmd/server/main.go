package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"outreach/internal/ai"
	"outreach/internal/cache"
	"outreach/internal/campaigns"
	"outreach/internal/config"
	"outreach/internal/db"
	"outreach/internal/emails"
	"outreach/internal/jobs"
	"outreach/internal/lifecycle"
	"outreach/internal/listing"
	"outreach/internal/metrics"
	"outreach/internal/server"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(cfg.NewLogger(os.Stdout))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server exited")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	slog.Info("migrations completed")

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return err
	}

	metrics.Init(database)

	// Shared cache and rate-limit storage
	var limiterStore fiber.Storage
	var optionsCache *cache.Cache
	if cfg.RedisURL != "" {
		store, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, caching disabled", "error", err)
		} else {
			defer store.Close()
			optionsCache = cache.New(store, cfg.OptionsCacheTTL)
			limiterStore = store
		}
	}

	aiClient := ai.New(ai.Config{
		APIKey:    cfg.AnthropicAPIKey,
		Model:     cfg.AnthropicModel,
		MaxTokens: cfg.AIMaxTokens,
		Timeout:   cfg.AITimeout,
	})
	if !aiClient.Configured() {
		slog.Warn("ANTHROPIC_API_KEY not set, campaign creation and email generation are disabled")
	}

	// Initialize services
	listingService := listing.NewService(database, optionsCache)
	campaignService := campaigns.NewService(database, aiClient)
	emailService := emails.NewService(database, aiClient)
	lifecycleService := lifecycle.NewService(lifecycle.NewPostgresStore(database), cfg.ResolveArchiveReason(yamlCfg))

	if seeds := yamlCfg.CampaignInputs(); len(seeds) > 0 {
		created, err := campaignService.Seed(ctx, seeds)
		if err != nil {
			return err
		}
		slog.Info("campaign seeds applied", "configured", len(seeds), "created", created)
	}

	if optionsCache.Enabled() {
		go jobs.NewOptionsWarmer(listingService, cfg.OptionsRefreshInterval).Start(ctx)
	}

	srv := server.New(cfg, limiterStore)
	srv.RegisterRoutes(server.Services{
		DB:          database,
		Carts:       listingService,
		Prospecting: listingService,
		Lifecycle:   lifecycleService,
		EmailList:   listingService,
		EmailDrafts: emailService,
		Campaigns:   campaignService,
	})

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	return srv.Shutdown()
}
