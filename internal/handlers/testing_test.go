package handlers

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gofiber/fiber/v3"

	"ukbol/internal/config"
	"ukbol/internal/models"
	"ukbol/internal/phylopic"
	"ukbol/internal/upstream"
)

// recordingViews is a fiber.Views that records what was rendered instead of
// executing templates.
type recordingViews struct {
	mu      sync.Mutex
	name    string
	binding fiber.Map
	layout  []string
}

func (v *recordingViews) Load() error { return nil }

func (v *recordingViews) Render(out io.Writer, name string, binding any, layout ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.name = name
	v.binding, _ = binding.(fiber.Map)
	v.layout = layout
	_, err := fmt.Fprintf(out, "view:%s", name)
	return err
}

func (v *recordingViews) last() (string, fiber.Map) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.name, v.binding
}

func newTestApp(views *recordingViews) *fiber.App {
	return fiber.New(fiber.Config{
		Views: views,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).SendString(message)
		},
	})
}

func testConfig() *config.Config {
	return &config.Config{SiteTitle: "UKBoL"}
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

type fakeTaxonClient struct {
	mu          sync.Mutex
	taxa        map[string]*models.Taxon
	parents     map[string][]string
	bins        map[string][]models.Bin
	roots       []models.Taxon
	suggestions []models.Taxon
	match       *models.GBIFMatch
	err         error
	gbifErr     error

	suggestQuery string
	suggestSize  int
}

func (f *fakeTaxonClient) GetTaxon(ctx context.Context, taxonID string) (*models.Taxon, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.taxa[taxonID]
	if !ok {
		return nil, fmt.Errorf("taxonomy get taxon: %w", upstream.ErrNotFound)
	}
	return t, nil
}

func (f *fakeTaxonClient) GetRoots(ctx context.Context) ([]models.Taxon, error) {
	return f.roots, f.err
}

func (f *fakeTaxonClient) GetTaxonParents(ctx context.Context, taxonID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.taxa[taxonID]; !ok {
		return nil, fmt.Errorf("taxonomy get parents: %w", upstream.ErrNotFound)
	}
	return f.parents[taxonID], nil
}

func (f *fakeTaxonClient) GetSuggestions(ctx context.Context, query string, size int) ([]models.Taxon, error) {
	f.mu.Lock()
	f.suggestQuery = query
	f.suggestSize = size
	f.mu.Unlock()
	return f.suggestions, f.err
}

func (f *fakeTaxonClient) GetTaxonBins(ctx context.Context, taxonID string) ([]models.Bin, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bins[taxonID], nil
}

func (f *fakeTaxonClient) GetGBIFData(ctx context.Context, name, rank string) (*models.GBIFMatch, error) {
	return f.match, f.gbifErr
}

func (f *fakeTaxonClient) DownloadURL(taxonID string) string {
	return "http://taxonomy.test/api/taxon/" + taxonID + "/download/specimens"
}

type fakeResolver struct {
	image *phylopic.ImageReference
	err   error
	calls int
}

func (f *fakeResolver) Resolve(ctx context.Context, match *models.GBIFMatch) (*phylopic.ImageReference, error) {
	f.calls++
	return f.image, f.err
}
