package server

import (
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ukbol/internal/config"
	"ukbol/internal/handlers"
	"ukbol/internal/handlers/api"
	"ukbol/internal/pages"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Client   handlers.TaxonClient
	Resolver handlers.ImageResolver
	Content  *config.Content

	// Store backs the /api routes; nil disables them.
	Store api.TaxonStore
	// DB and Upstream feed the readiness probe; either may be nil.
	DB       handlers.Pinger
	Upstream handlers.UpstreamStatus
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Dependencies) error {
	// Initialize handlers
	pageHandler := handlers.NewPageHandler(s.Cfg, deps.Content)
	explorerHandler := handlers.NewExplorerHandler(deps.Client, deps.Resolver, s.Cfg)
	probeHandler := handlers.NewProbeHandler(deps.DB, deps.Upstream)

	// Probe and metrics routes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Taxonomy API routes (only with a database)
	if deps.Store != nil {
		taxonHandler := api.NewTaxonHandler(deps.Store)
		apiGroup := s.App.Group("/api")
		apiGroup.Get("/status", taxonHandler.Status)
		apiGroup.Get("/taxon/roots", taxonHandler.Roots)
		apiGroup.Get("/taxon/suggest", taxonHandler.Suggest)
		apiGroup.Get("/taxon/:id", taxonHandler.Get)
		apiGroup.Get("/taxon/:id/children", taxonHandler.Children)
		apiGroup.Get("/taxon/:id/parents", taxonHandler.Parents)
		apiGroup.Get("/taxon/:id/specimens", taxonHandler.Specimens)
		apiGroup.Get("/taxon/:id/bins", taxonHandler.Bins)
		apiGroup.Get("/taxon/:id/download/specimens", taxonHandler.DownloadSpecimens)
	} else {
		log.Println("DATABASE_URL not set, /api routes disabled")
	}

	// Data page partials
	s.App.Get("/data/suggest", explorerHandler.Suggest)
	s.App.Get("/data/image", explorerHandler.Image)
	s.App.Get("/data/download/:id", explorerHandler.Download)

	// Page routes from the static route table
	router, err := pages.NewRouter(pages.Default)
	if err != nil {
		return err
	}
	if err := router.AfterEach(pages.TitleHook(s.Cfg.SiteTitle)); err != nil {
		return err
	}
	for name, handler := range map[string]pages.Handler{
		"home":             pageHandler.Static,
		"about":            pageHandler.Static,
		"dna-barcoding":    pageHandler.Static,
		"data":             explorerHandler.Data,
		"priority-species": pageHandler.PrioritySpecies,
		"related-projects": pageHandler.RelatedProjects,
	} {
		if err := router.Handle(name, handler); err != nil {
			return err
		}
	}
	return router.Mount(s.App)
}
