package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"ukbol/internal/config"
	"ukbol/internal/models"
	"ukbol/internal/pages"
	"ukbol/internal/phylopic"
	"ukbol/internal/upstream"
	"ukbol/internal/validation"
)

// suggestionLimit is the number of suggestions shown under the search box.
const suggestionLimit = 10

// breadcrumbConcurrency bounds the parallel lookups of ancestor names.
const breadcrumbConcurrency = 4

// TaxonClient is the taxonomy API as used by the explorer.
type TaxonClient interface {
	GetTaxon(ctx context.Context, taxonID string) (*models.Taxon, error)
	GetRoots(ctx context.Context) ([]models.Taxon, error)
	GetTaxonParents(ctx context.Context, taxonID string) ([]string, error)
	GetSuggestions(ctx context.Context, query string, size int) ([]models.Taxon, error)
	GetTaxonBins(ctx context.Context, taxonID string) ([]models.Bin, error)
	GetGBIFData(ctx context.Context, name, rank string) (*models.GBIFMatch, error)
	DownloadURL(taxonID string) string
}

// ImageResolver turns a GBIF match into a silhouette image.
type ImageResolver interface {
	Resolve(ctx context.Context, match *models.GBIFMatch) (*phylopic.ImageReference, error)
}

// Crumb is one ancestor in the Data page breadcrumb.
type Crumb struct {
	ID   string
	Name string
}

// ExplorerHandler serves the Data page and its HTMX partials.
type ExplorerHandler struct {
	client   TaxonClient
	resolver ImageResolver
	cfg      *config.Config
}

// NewExplorerHandler creates a new explorer handler.
func NewExplorerHandler(client TaxonClient, resolver ImageResolver, cfg *config.Config) *ExplorerHandler {
	return &ExplorerHandler{client: client, resolver: resolver, cfg: cfg}
}

// Data renders the Data page. With ?taxon= it shows the taxon, its ancestry
// and BINs; without it, the roots of the taxonomy.
func (h *ExplorerHandler) Data(c fiber.Ctx, route pages.Route) error {
	ctx := upstreamContext(c)
	taxonID := c.Query("taxon")

	if taxonID == "" {
		roots, err := h.client.GetRoots(ctx)
		if err != nil {
			return upstreamError(err)
		}
		return c.Render(route.View, pageData(c, h.cfg, route, fiber.Map{
			"Roots": roots,
		}))
	}

	if !validation.ValidateTaxonID(taxonID) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid taxon id")
	}

	var (
		taxon     *models.Taxon
		parentIDs []string
		bins      []models.Bin
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		taxon, err = h.client.GetTaxon(gctx, taxonID)
		return err
	})
	g.Go(func() error {
		var err error
		parentIDs, err = h.client.GetTaxonParents(gctx, taxonID)
		return err
	})
	g.Go(func() error {
		var err error
		bins, err = h.client.GetTaxonBins(gctx, taxonID)
		return err
	})
	if err := g.Wait(); err != nil {
		return upstreamError(err)
	}

	return c.Render(route.View, pageData(c, h.cfg, route, fiber.Map{
		"Taxon":       taxon,
		"Breadcrumb":  h.breadcrumb(ctx, parentIDs),
		"Bins":        bins,
		"DownloadURL": "/data/download/" + taxon.ID,
	}))
}

// breadcrumb resolves ancestor names, root first. An ancestor that cannot be
// fetched is shown by id.
func (h *ExplorerHandler) breadcrumb(ctx context.Context, parentIDs []string) []Crumb {
	crumbs := make([]Crumb, len(parentIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(breadcrumbConcurrency)
	for i, id := range parentIDs {
		// parents arrive immediate parent first
		slot := len(parentIDs) - 1 - i
		crumbs[slot] = Crumb{ID: id, Name: id}
		g.Go(func() error {
			taxon, err := h.client.GetTaxon(gctx, id)
			if err != nil {
				slog.Warn("failed to resolve ancestor", "taxon_id", id, "error", err)
				return nil
			}
			crumbs[slot].Name = taxon.Name
			return nil
		})
	}
	// ancestor failures are logged above and leave the id in place
	_ = g.Wait()
	return crumbs
}

// Suggest returns taxon name suggestions for HTMX.
func (h *ExplorerHandler) Suggest(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("q", ""))
	if !validation.ValidateQuery(query) {
		return c.SendString("")
	}

	taxa, err := h.client.GetSuggestions(upstreamContext(c), query, suggestionLimit)
	if err != nil {
		slog.Error("failed to fetch suggestions", "query", query, "error", err)
		return htmxError(c, "Suggestions are unavailable right now")
	}

	return c.Render("partials/suggestions", fiber.Map{
		"Taxa":  taxa,
		"Query": query,
	}, "")
}

// Image renders the silhouette for ?name=&rank=. Any failure along the
// GBIF and PhyloPic chain renders the placeholder instead.
func (h *ExplorerHandler) Image(c fiber.Ctx) error {
	name := validation.NormalizeQuery(c.Query("name", ""))
	rank := validation.NormalizeRank(c.Query("rank", ""))
	data := fiber.Map{"Name": name}

	if !validation.ValidateQuery(name) || !validation.ValidateRank(rank) {
		return c.Render("partials/image", data, "")
	}

	ctx := upstreamContext(c)
	match, err := h.client.GetGBIFData(ctx, name, rank)
	if err != nil {
		slog.Warn("gbif match failed", "name", name, "rank", rank, "error", err)
		return c.Render("partials/image", data, "")
	}
	if match == nil {
		return c.Render("partials/image", data, "")
	}

	image, err := h.resolver.Resolve(ctx, match)
	if err != nil {
		var re *phylopic.ResolutionError
		if errors.As(err, &re) && re.Step == phylopic.StepMatch {
			slog.Debug("no phylopic image", "name", name, "rank", rank)
		} else {
			slog.Warn("phylopic resolution failed", "name", name, "rank", rank, "error", err)
		}
		return c.Render("partials/image", data, "")
	}

	data["Image"] = image
	return c.Render("partials/image", data, "")
}

// Download redirects to the specimen CSV export of a taxon.
func (h *ExplorerHandler) Download(c fiber.Ctx) error {
	taxonID := c.Params("id")
	if !validation.ValidateTaxonID(taxonID) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid taxon id")
	}
	return c.Redirect().To(h.client.DownloadURL(taxonID))
}

// upstreamError maps a taxonomy API failure onto an HTTP error for the
// central error page.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, upstream.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Taxon not found")
	case errors.Is(err, upstream.ErrCancelled):
		return fiber.NewError(fiber.StatusGatewayTimeout, "The taxonomy service did not respond in time")
	default:
		slog.Error("taxonomy request failed", "error", err)
		return fiber.NewError(fiber.StatusBadGateway, "The taxonomy service is unavailable")
	}
}
