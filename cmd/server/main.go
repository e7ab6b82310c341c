package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"ukbol/internal/config"
	"ukbol/internal/db"
	"ukbol/internal/jobs"
	"ukbol/internal/metrics"
	"ukbol/internal/phylopic"
	"ukbol/internal/server"
	"ukbol/internal/taxonapi"
	"ukbol/internal/upstream"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	content, err := config.LoadContent(cfg.ContentFile)
	if err != nil {
		log.Fatalf("Failed to load content file %s: %v", cfg.ContentFile, err)
	}
	log.Printf("Loaded %d priority species and %d related projects", len(content.PrioritySpecies), len(content.RelatedProjects))

	assetKind, err := phylopic.ParseAssetKind(cfg.PhyloPicAssetKind)
	if err != nil {
		log.Fatalf("Invalid PHYLOPIC_ASSET_KIND: %v", err)
	}

	metrics.RegisterUpstream()

	httpClient := upstream.NewHTTPClient(cfg.UpstreamTimeout)
	client := taxonapi.New(cfg.TaxonAPIURL,
		taxonapi.WithHTTPClient(httpClient),
		taxonapi.WithGBIFURL(cfg.GBIFAPIURL),
		taxonapi.WithObserver(metrics.ObserveUpstream),
	)
	resolver := phylopic.NewResolver(httpClient, metrics.ObserveUpstream,
		phylopic.WithAPIURL(cfg.PhyloPicAPIURL),
		phylopic.WithSiteURL(cfg.PhyloPicSiteURL),
		phylopic.WithAssetKind(assetKind),
	)

	deps := server.Dependencies{
		Client:   client,
		Resolver: resolver,
		Content:  content,
	}

	// Initialize database (optional, backs the /api routes)
	if cfg.HasDatabase() {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		// Run migrations
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")

		if cfg.IsDev() {
			if err := database.SeedDevTaxa(ctx); err != nil {
				log.Printf("Warning: failed to seed development taxa: %v", err)
			}
		}

		// Initialize Prometheus metrics
		metrics.Init(database)

		deps.Store = database
		deps.DB = database
	}

	// Start upstream availability checker
	checker := jobs.NewUpstreamChecker([]jobs.Target{
		{Service: "taxonomy", URL: client.BaseURL() + "/api/status", Required: true},
		{Service: "gbif", URL: cfg.GBIFAPIURL + "/species/match?name=Animalia&rank=kingdom"},
		{Service: "phylopic", URL: cfg.PhyloPicAPIURL + "/"},
	}, cfg.UpstreamCheckInterval, httpClient)
	deps.Upstream = checker

	srv := server.New(cfg, server.NewViews("./views", cfg.IsDev()))
	if err := srv.RegisterRoutes(deps); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// The taxonomy target defaults to this server, so check only once it listens
	srv.App.Hooks().OnListen(func(fiber.ListenData) error {
		go checker.Start(ctx)
		return nil
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
