// Package taxonapi is a client for the UKBoL taxonomy API and the GBIF
// species match service.
package taxonapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ukbol/internal/models"
	"ukbol/internal/upstream"
)

// DefaultGBIFURL is the GBIF API root used for species matching.
const DefaultGBIFURL = "https://api.gbif.org/v1"

// basePath is the root of every taxonomy API route.
const basePath = "/api/taxon"

// Client issues read-only requests against the taxonomy API. It holds no
// state between calls and is safe for concurrent use.
type Client struct {
	baseURL string
	gbifURL string
	api     *upstream.Client
	gbif    *upstream.Client
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	gbifURL    string
	observer   upstream.Observer
	userAgent  string
}

// WithHTTPClient sets the http.Client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithGBIFURL overrides the GBIF API root.
func WithGBIFURL(u string) Option {
	return func(o *clientOptions) { o.gbifURL = u }
}

// WithObserver reports every completed request to fn.
func WithObserver(fn upstream.Observer) Option {
	return func(o *clientOptions) { o.observer = fn }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

// New creates a client for the taxonomy API rooted at baseURL. An empty
// baseURL produces root-relative URLs, which is only useful for DownloadURL.
func New(baseURL string, opts ...Option) *Client {
	o := clientOptions{gbifURL: DefaultGBIFURL}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		gbifURL: strings.TrimRight(o.gbifURL, "/"),
		api:     upstream.New("taxonomy", o.httpClient, o.observer),
		gbif:    upstream.New("gbif", o.httpClient, o.observer),
	}
	if o.userAgent != "" {
		c.api.SetUserAgent(o.userAgent)
		c.gbif.SetUserAgent(o.userAgent)
	}
	return c
}

// BaseURL returns the taxonomy API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) taxonURL(taxonID string, suffix string) string {
	return c.baseURL + basePath + "/" + url.PathEscape(taxonID) + suffix
}

// GetTaxon fetches a single taxon. Unknown ids yield upstream.ErrNotFound.
func (c *Client) GetTaxon(ctx context.Context, taxonID string) (*models.Taxon, error) {
	var taxon models.Taxon
	if err := c.api.GetJSON(ctx, "get_taxon", c.taxonURL(taxonID, ""), &taxon); err != nil {
		return nil, err
	}
	return &taxon, nil
}

// GetRoots fetches the top-level taxa.
func (c *Client) GetRoots(ctx context.Context) ([]models.Taxon, error) {
	var roots []models.Taxon
	if err := c.api.GetJSON(ctx, "get_roots", c.baseURL+basePath+"/roots", &roots); err != nil {
		return nil, err
	}
	return roots, nil
}

// GetTaxonParents fetches the ids of a taxon's ancestors in the order the API
// returns them: immediate parent first, root last.
func (c *Client) GetTaxonParents(ctx context.Context, taxonID string) ([]string, error) {
	var parents []string
	if err := c.api.GetJSON(ctx, "get_parents", c.taxonURL(taxonID, "/parents"), &parents); err != nil {
		return nil, err
	}
	return parents, nil
}

// GetSuggestions fetches up to size taxa whose names match query. size is
// sent as given; the API decides what range it accepts.
func (c *Client) GetSuggestions(ctx context.Context, query string, size int) ([]models.Taxon, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("size", strconv.Itoa(size))

	var suggestions []models.Taxon
	if err := c.api.GetJSON(ctx, "suggest", c.baseURL+basePath+"/suggest?"+params.Encode(), &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// GetTaxonBins fetches the BINs associated with a taxon.
func (c *Client) GetTaxonBins(ctx context.Context, taxonID string) ([]models.Bin, error) {
	var bins []models.Bin
	if err := c.api.GetJSON(ctx, "get_bins", c.taxonURL(taxonID, "/bins"), &bins); err != nil {
		return nil, err
	}
	return bins, nil
}

// BuildDownloadURL returns the API path serving the specimen download for a
// taxon. It performs no I/O and no validation.
func BuildDownloadURL(taxonID string) string {
	return basePath + "/" + taxonID + "/download/specimens"
}

// DownloadURL returns BuildDownloadURL prefixed with the client's base URL.
func (c *Client) DownloadURL(taxonID string) string {
	return c.baseURL + BuildDownloadURL(taxonID)
}

// GetGBIFData looks up name at rank in the GBIF backbone using strict
// matching. GBIF answers unmatched names with matchType NONE rather than an
// error status; that case returns a nil match and a nil error.
func (c *Client) GetGBIFData(ctx context.Context, name, rank string) (*models.GBIFMatch, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("rank", rank)
	params.Set("strict", "true")

	var match models.GBIFMatch
	if err := c.gbif.GetJSON(ctx, "species_match", c.gbifURL+"/species/match?"+params.Encode(), &match); err != nil {
		return nil, err
	}
	if match.MatchType == models.MatchTypeNone {
		return nil, nil
	}
	return &match, nil
}
