package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/config"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/db"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/discovery"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/handler"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/middleware"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/repository"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/router"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/service"
	"github.com/kimdonghwandeveloper-cmd/influencer-inviteai/internal/youtube"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "inviteai-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	version, err := db.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Printf("database schema at version %d", version)

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	profileRepo := repository.NewProfileRepo(pool)
	profileSvc := service.NewProfileService(profileRepo, cache)

	// Discovery is optional on the API server. Without a key the trigger
	// endpoint answers 503 and the read API keeps working.
	var orch *discovery.Orchestrator
	if cfg.YouTubeAPIKey != "" {
		opts := []youtube.Option{youtube.WithLogger(middleware.Logger)}
		if cfg.YouTubeBaseURL != "" {
			opts = append(opts, youtube.WithBaseURL(cfg.YouTubeBaseURL))
		}
		factory, err := youtube.NewFactory(cfg.YouTubeAPIKey, cfg.YouTubeRateLimit, opts...)
		if err != nil {
			log.Fatalf("failed to configure YouTube client: %v", err)
		}
		orch = discovery.NewOrchestrator(
			factory.NewDirectoryClient,
			profileRepo,
			discovery.NewFilterChain(nil, 0, 0),
			discovery.NewActivityScorer(),
			middleware.Logger,
		)
	} else {
		log.Println("discovery: no YOUTUBE_API_KEY configured, trigger endpoint disabled")
	}

	discSvc := service.NewDiscoveryService(orch, cache, service.DiscoveryDefaults{
		Keywords:         cfg.DiscoveryKeywordList(),
		ContextKeyword:   cfg.DiscoveryContext,
		PerKeywordTarget: cfg.DiscoveryTarget,
		Concurrency:      cfg.DiscoveryConcurrency,
	})

	handler.InitMetrics(pool)
	discovery.RegisterMetrics()
	service.RegisterCacheMetrics()

	if cfg.DiscoveryInterval > 0 && discSvc.Available() {
		worker := service.NewDiscoveryWorker(discSvc, cfg.DiscoveryInterval)
		go worker.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      "InviteAI API",
		ServerHeader: "InviteAI",
	})

	h := &router.Handlers{
		Influencer: handler.NewInfluencerHandler(profileSvc),
		Stats:      handler.NewStatsHandler(profileSvc),
		Outreach:   handler.NewOutreachHandler(profileSvc),
		Discovery:  handler.NewDiscoveryHandler(discSvc),
		Health:     handler.NewHealthHandler(pool, cache.Client(), discSvc),
	}
	router.Setup(app, h, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("inviteai API starting on :%s (env=%s)", cfg.Port, cfg.Environment)
		if err := app.Listen(":" + cfg.Port); err != nil {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("received signal: %v", sig)
	case err := <-serverErr:
		log.Printf("server error: %v", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("inviteai API stopped")
}
