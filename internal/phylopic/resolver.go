// Package phylopic resolves a representative silhouette image for a GBIF
// match using the PhyloPic API.
package phylopic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ukbol/internal/models"
	"ukbol/internal/upstream"
)

const (
	DefaultAPIURL  = "https://api.phylopic.org"
	DefaultSiteURL = "https://www.phylopic.org"
)

// AssetKind selects which file of a PhyloPic image is returned as the
// display asset.
type AssetKind string

const (
	AssetVector    AssetKind = "vector"    // _links.vectorFile
	AssetThumbnail AssetKind = "thumbnail" // _links.thumbnailFiles[0]
)

// ParseAssetKind validates an asset kind read from configuration.
func ParseAssetKind(s string) (AssetKind, error) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case AssetVector:
		return AssetVector, nil
	case AssetThumbnail:
		return AssetThumbnail, nil
	}
	return "", fmt.Errorf("unknown phylopic asset kind %q", s)
}

// ImageReference is a resolved image: the asset to display and the PhyloPic
// page to credit.
type ImageReference struct {
	URL  string `json:"url"`
	Link string `json:"link"`
}

// Resolver chains the PhyloPic resolve and image lookups.
type Resolver struct {
	apiURL  string
	siteURL string
	kind    AssetKind
	client  *upstream.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAPIURL overrides the PhyloPic API origin.
func WithAPIURL(u string) Option {
	return func(r *Resolver) { r.apiURL = strings.TrimRight(u, "/") }
}

// WithSiteURL overrides the human-facing PhyloPic origin used for links.
func WithSiteURL(u string) Option {
	return func(r *Resolver) { r.siteURL = strings.TrimRight(u, "/") }
}

// WithAssetKind selects the display asset returned by Resolve.
func WithAssetKind(kind AssetKind) Option {
	return func(r *Resolver) { r.kind = kind }
}

// NewResolver creates a resolver. httpClient and observe may be nil.
func NewResolver(httpClient *http.Client, observe upstream.Observer, opts ...Option) *Resolver {
	r := &Resolver{
		apiURL:  DefaultAPIURL,
		siteURL: DefaultSiteURL,
		kind:    AssetVector,
		client:  upstream.New("phylopic", httpClient, observe),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AssetKind returns the display asset kind the resolver returns.
func (r *Resolver) AssetKind() AssetKind {
	return r.kind
}

// ObjectIDs joins the GBIF keys present on match, most specific rank first,
// into the comma separated list PhyloPic's resolve endpoint expects. Ranks
// the match does not carry are left out entirely.
func ObjectIDs(match *models.GBIFMatch) string {
	keys := match.RankKeys()
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strconv.FormatInt(k.Key, 10))
	}
	return strings.Join(ids, ",")
}

type link struct {
	Href string `json:"href"`
}

type resolveResponse struct {
	Links struct {
		PrimaryImage *link `json:"primaryImage"`
	} `json:"_links"`
}

type imageResponse struct {
	Links struct {
		VectorFile     *link  `json:"vectorFile"`
		ThumbnailFiles []link `json:"thumbnailFiles"`
	} `json:"_links"`
}

// Resolve finds the primary PhyloPic image for match. It either returns a
// complete reference or an error; every missing link in the chain is a
// *ResolutionError naming the step.
func (r *Resolver) Resolve(ctx context.Context, match *models.GBIFMatch) (*ImageReference, error) {
	if match == nil {
		return nil, &ResolutionError{Step: StepMatch, Err: errors.New("no GBIF match")}
	}
	objectIDs := ObjectIDs(match)
	if objectIDs == "" {
		return nil, &ResolutionError{Step: StepMatch, Err: errors.New("match has no rank keys")}
	}

	params := url.Values{}
	params.Set("objectIDs", objectIDs)
	var resolved resolveResponse
	if err := r.client.GetJSON(ctx, "resolve", r.apiURL+"/resolve/gbif.org/species?"+params.Encode(), &resolved); err != nil {
		return nil, &ResolutionError{Step: StepResolve, Err: err}
	}
	if resolved.Links.PrimaryImage == nil || resolved.Links.PrimaryImage.Href == "" {
		return nil, &ResolutionError{Step: StepResolve, Err: errors.New("no primary image linked")}
	}
	imageHref := resolved.Links.PrimaryImage.Href

	imageURL, err := r.absolute(r.apiURL, imageHref)
	if err != nil {
		return nil, &ResolutionError{Step: StepImage, Err: err}
	}
	var image imageResponse
	if err := r.client.GetJSON(ctx, "image", imageURL, &image); err != nil {
		return nil, &ResolutionError{Step: StepImage, Err: err}
	}

	assetHref, err := r.assetHref(&image)
	if err != nil {
		return nil, &ResolutionError{Step: StepAsset, Err: err}
	}
	assetURL, err := r.absolute(r.apiURL, assetHref)
	if err != nil {
		return nil, &ResolutionError{Step: StepAsset, Err: err}
	}
	attribution, err := r.absolute(r.siteURL, imageHref)
	if err != nil {
		return nil, &ResolutionError{Step: StepAsset, Err: err}
	}

	return &ImageReference{URL: assetURL, Link: attribution}, nil
}

func (r *Resolver) assetHref(image *imageResponse) (string, error) {
	switch r.kind {
	case AssetThumbnail:
		if len(image.Links.ThumbnailFiles) == 0 || image.Links.ThumbnailFiles[0].Href == "" {
			return "", errors.New("no thumbnail file linked")
		}
		return image.Links.ThumbnailFiles[0].Href, nil
	default:
		if image.Links.VectorFile == nil || image.Links.VectorFile.Href == "" {
			return "", errors.New("no vector file linked")
		}
		return image.Links.VectorFile.Href, nil
	}
}

// absolute resolves href against origin. Hrefs that are already absolute,
// such as image file links on a separate host, are returned unchanged.
func (r *Resolver) absolute(origin, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	return origin + "/" + strings.TrimLeft(href, "/"), nil
}
