package api

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/gofiber/fiber/v3"

	"ukbol/internal/db"
	"ukbol/internal/metrics"
	"ukbol/internal/models"
	"ukbol/internal/validation"
)

// Pagination and suggestion bounds.
const (
	defaultSuggestSize = 10
	maxSuggestSize     = 100
	defaultPerPage     = 20
	maxPerPage         = 100
)

// Specimen export tuning. The export outlives the handler, so it runs under
// its own deadline.
const (
	exportTimeout    = 10 * time.Minute
	exportBuffer     = 256
	exportFlushEvery = 500
)

// TaxonStore is the read side of the taxonomy database.
type TaxonStore interface {
	GetTaxon(ctx context.Context, id string) (*models.Taxon, error)
	GetRoots(ctx context.Context) ([]models.Taxon, error)
	GetChildren(ctx context.Context, id string) ([]models.Taxon, error)
	GetParentIDs(ctx context.Context, id string) ([]string, error)
	SuggestTaxa(ctx context.Context, query string, limit int) ([]models.Taxon, error)
	GetSpecimensByNames(ctx context.Context, names []string, page, perPage int) (*models.SpecimenPage, error)
	GetBinsForNames(ctx context.Context, names []string) ([]models.Bin, error)
	EachAssociatedSpecimen(ctx context.Context, names []string, fn func(*models.Specimen) error) error
	GetDataSourceStatuses(ctx context.Context) ([]models.DataSourceStatus, error)
}

var _ TaxonStore = (*db.DB)(nil)

// TaxonHandler serves the taxonomy JSON API.
type TaxonHandler struct {
	store TaxonStore
}

// NewTaxonHandler creates a new API taxon handler.
func NewTaxonHandler(store TaxonStore) *TaxonHandler {
	return &TaxonHandler{store: store}
}

// Status reports the API is up and when each data source was last loaded.
func (h *TaxonHandler) Status(c fiber.Ctx) error {
	sources, err := h.store.GetDataSourceStatuses(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch data source status")
	}
	return c.JSON(models.StatusResponse{Status: ":)", Sources: sources})
}

// Roots returns every taxon without a parent.
func (h *TaxonHandler) Roots(c fiber.Ctx) error {
	roots, err := h.store.GetRoots(c.Context())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch roots")
	}
	return c.JSON(roots)
}

// Suggest returns taxa whose name starts with ?query=.
func (h *TaxonHandler) Suggest(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("query", ""))
	if query == "" {
		return c.JSON([]models.Taxon{})
	}
	if !validation.ValidateQuery(query) {
		return jsonError(c, fiber.StatusBadRequest, "query is too long")
	}
	size := validation.ParseIntParam(c.Query("size"), defaultSuggestSize, 1, maxSuggestSize)

	taxa, err := h.store.SuggestTaxa(c.Context(), query, size)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch suggestions")
	}
	return c.JSON(taxa)
}

// Get returns a single taxon by id.
func (h *TaxonHandler) Get(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	metrics.RecordTaxonLookup(taxon.ID, models.OutcomeFound)
	return c.JSON(taxon)
}

// Children returns the direct children of a taxon, ordered by name.
func (h *TaxonHandler) Children(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	children, err := h.store.GetChildren(c.Context(), taxon.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch children")
	}
	return c.JSON(children)
}

// Parents returns the ancestor ids of a taxon, immediate parent first.
func (h *TaxonHandler) Parents(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	parents, err := h.store.GetParentIDs(c.Context(), taxon.ID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch parents")
	}
	return c.JSON(parents)
}

// Specimens returns one page of the specimens identified with the taxon's
// accepted name or one of its synonyms.
func (h *TaxonHandler) Specimens(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	page := validation.ParseIntParam(c.Query("page"), 1, 1, math.MaxInt32)
	perPage := validation.ParseIntParam(c.Query("per_page"), defaultPerPage, 1, maxPerPage)

	result, err := h.store.GetSpecimensByNames(c.Context(), taxon.Names(), page, perPage)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch specimens")
	}
	return c.JSON(result)
}

// Bins returns the BINs containing specimens identified with the taxon's
// names.
func (h *TaxonHandler) Bins(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}
	bins, err := h.store.GetBinsForNames(c.Context(), taxon.Names())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch bins")
	}
	return c.JSON(bins)
}

// DownloadSpecimens streams every specimen in the taxon's BINs as CSV.
// A store failure before the first row is reported as a JSON error; once rows
// are flowing the response is already committed and the CSV is cut short.
func (h *TaxonHandler) DownloadSpecimens(c fiber.Ctx) error {
	taxon, ok, err := h.lookup(c)
	if !ok {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	rows := make(chan []string, exportBuffer)
	errc := make(chan error, 1)
	go func() {
		defer close(rows)
		errc <- h.store.EachAssociatedSpecimen(ctx, taxon.Names(), func(s *models.Specimen) error {
			select {
			case rows <- s.CSVRecord():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	first, more := <-rows
	if !more {
		cancel()
		if err := <-errc; err != nil {
			slog.Error("failed to export specimens", "taxon_id", taxon.ID, "error", err)
			return jsonError(c, fiber.StatusInternalServerError, "failed to export specimens")
		}
	}

	taxonID := taxon.ID
	c.Attachment(taxonID + "-specimens.csv")
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.SendStreamWriter(func(bw *bufio.Writer) {
		w := csv.NewWriter(bw)
		werr := w.Write(models.CSVHeader)
		if more {
			if werr == nil {
				werr = w.Write(first)
			}
			n := 1
			for rec := range rows {
				if werr != nil {
					// client went away; stop the query and drain
					cancel()
					continue
				}
				werr = w.Write(rec)
				if n++; werr == nil && n%exportFlushEvery == 0 {
					werr = flushCSV(w, bw)
				}
			}
			if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("specimen export cut short", "taxon_id", taxonID, "error", err)
			}
		}
		cancel()
		if werr == nil {
			werr = flushCSV(w, bw)
		}
		if werr != nil {
			slog.Warn("failed to write specimen export", "taxon_id", taxonID, "error", werr)
		}
	})
}

// flushCSV pushes buffered CSV rows through to the connection.
func flushCSV(w *csv.Writer, bw *bufio.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// lookup loads the taxon named by the :id route parameter. When ok is false
// the error response has already been written and err must be returned.
func (h *TaxonHandler) lookup(c fiber.Ctx) (taxon *models.Taxon, ok bool, err error) {
	id := c.Params("id")
	if !validation.ValidateTaxonID(id) {
		return nil, false, jsonError(c, fiber.StatusNotFound, "Taxon not found")
	}

	taxon, err = h.store.GetTaxon(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrTaxonNotFound) {
			metrics.RecordTaxonLookup(id, models.OutcomeNotFound)
			return nil, false, jsonError(c, fiber.StatusNotFound, "Taxon not found")
		}
		return nil, false, jsonError(c, fiber.StatusInternalServerError, "failed to fetch taxon")
	}
	return taxon, true, nil
}
