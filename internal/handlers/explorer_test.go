package handlers

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/go-cmp/cmp"

	"ukbol/internal/models"
	"ukbol/internal/pages"
	"ukbol/internal/phylopic"
	"ukbol/internal/upstream"
)

var dataRoute = pages.Route{Path: "/data", Name: "data", View: "data", Title: "Data"}

func bombusClient() *fakeTaxonClient {
	return &fakeTaxonClient{
		taxa: map[string]*models.Taxon{
			"T3": {ID: "T3", Name: "Bombus terrestris", Rank: "Species", Parent: strPtr("T2")},
			"T2": {ID: "T2", Name: "Bombus", Rank: "Genus", Parent: strPtr("T1"), Children: []string{"T3"}},
			"T1": {ID: "T1", Name: "Apidae", Rank: "Family"},
		},
		parents: map[string][]string{
			"T3": {"T2", "T1"},
			"T2": {"T1"},
			"T1": {},
		},
		bins: map[string][]models.Bin{
			"T3": {{URI: "BOLD:AAA0001", Specimens: 3, Names: []string{"Bombus terrestris"}}},
		},
		roots: []models.Taxon{{ID: "T1", Name: "Apidae", Rank: "Family"}},
	}
}

func newExplorerApp(client TaxonClient, resolver ImageResolver) (*fiber.App, *recordingViews) {
	views := &recordingViews{}
	app := newTestApp(views)
	h := NewExplorerHandler(client, resolver, testConfig())
	app.Get("/data", func(c fiber.Ctx) error { return h.Data(c, dataRoute) })
	app.Get("/data/suggest", h.Suggest)
	app.Get("/data/image", h.Image)
	app.Get("/data/download/:id", h.Download)
	return app, views
}

func TestExplorerHandler_DataTaxon(t *testing.T) {
	app, views := newExplorerApp(bombusClient(), &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data?taxon=T3", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	name, data := views.last()
	if name != "data" {
		t.Errorf("rendered view = %q, want data", name)
	}
	taxon, ok := data["Taxon"].(*models.Taxon)
	if !ok || taxon.Name != "Bombus terrestris" {
		t.Errorf("Taxon = %v, want Bombus terrestris", data["Taxon"])
	}

	wantCrumbs := []Crumb{{ID: "T1", Name: "Apidae"}, {ID: "T2", Name: "Bombus"}}
	if diff := cmp.Diff(wantCrumbs, data["Breadcrumb"]); diff != "" {
		t.Errorf("Breadcrumb mismatch (-want +got):\n%s", diff)
	}

	bins, _ := data["Bins"].([]models.Bin)
	if len(bins) != 1 || bins[0].URI != "BOLD:AAA0001" {
		t.Errorf("Bins = %v, want BOLD:AAA0001", data["Bins"])
	}
	if data["DownloadURL"] != "/data/download/T3" {
		t.Errorf("DownloadURL = %v, want /data/download/T3", data["DownloadURL"])
	}
	if data["Title"] != "Data | UKBoL" {
		t.Errorf("Title = %v, want %q", data["Title"], "Data | UKBoL")
	}
}

func TestExplorerHandler_DataBreadcrumbFallsBackToID(t *testing.T) {
	client := bombusClient()
	delete(client.taxa, "T1")
	app, views := newExplorerApp(client, &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data?taxon=T3", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	_, data := views.last()
	wantCrumbs := []Crumb{{ID: "T1", Name: "T1"}, {ID: "T2", Name: "Bombus"}}
	if diff := cmp.Diff(wantCrumbs, data["Breadcrumb"]); diff != "" {
		t.Errorf("Breadcrumb mismatch (-want +got):\n%s", diff)
	}
}

func TestExplorerHandler_DataRoots(t *testing.T) {
	app, views := newExplorerApp(bombusClient(), &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	_, data := views.last()
	roots, _ := data["Roots"].([]models.Taxon)
	if len(roots) != 1 || roots[0].ID != "T1" {
		t.Errorf("Roots = %v, want [T1]", data["Roots"])
	}
	if _, ok := data["Taxon"]; ok {
		t.Error("Taxon should not be set without ?taxon=")
	}
}

func TestExplorerHandler_DataErrors(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		clientErr  error
		wantStatus int
	}{
		{"unknown taxon", "/data?taxon=NOPE", nil, fiber.StatusNotFound},
		{"invalid id", "/data?taxon=a%2Fb", nil, fiber.StatusBadRequest},
		{"transport failure", "/data?taxon=T3", &upstream.TransportError{Service: "taxonomy", Op: "get taxon", StatusCode: 500, Err: errors.New("boom")}, fiber.StatusBadGateway},
		{"cancelled", "/data?taxon=T3", upstream.ErrCancelled, fiber.StatusGatewayTimeout},
		{"roots failure", "/data", &upstream.TransportError{Service: "taxonomy", Op: "get roots", Err: errors.New("refused")}, fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := bombusClient()
			client.err = tt.clientErr
			app, _ := newExplorerApp(client, &fakeResolver{})

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestExplorerHandler_Suggest(t *testing.T) {
	client := bombusClient()
	client.suggestions = []models.Taxon{{ID: "T2", Name: "Bombus"}}
	app, views := newExplorerApp(client, &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data/suggest?q=++bom++", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if client.suggestQuery != "bom" || client.suggestSize != suggestionLimit {
		t.Errorf("GetSuggestions(%q, %d), want (%q, %d)", client.suggestQuery, client.suggestSize, "bom", suggestionLimit)
	}

	name, data := views.last()
	if name != "partials/suggestions" {
		t.Errorf("rendered view = %q, want partials/suggestions", name)
	}
	if taxa, _ := data["Taxa"].([]models.Taxon); len(taxa) != 1 {
		t.Errorf("Taxa = %v, want one suggestion", data["Taxa"])
	}
}

func TestExplorerHandler_SuggestEmptyQuery(t *testing.T) {
	client := bombusClient()
	app, views := newExplorerApp(client, &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data/suggest?q=+++", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("body = %q, want empty", body)
	}
	if name, _ := views.last(); name != "" {
		t.Errorf("rendered view %q for an empty query", name)
	}
	if client.suggestSize != 0 {
		t.Error("GetSuggestions should not be called for an empty query")
	}
}

func TestExplorerHandler_SuggestUpstreamError(t *testing.T) {
	client := bombusClient()
	client.err = &upstream.TransportError{Service: "taxonomy", Op: "suggest", Err: errors.New("refused")}
	app, _ := newExplorerApp(client, &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data/suggest?q=bom", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200 so HTMX swaps the message in", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if want := "Suggestions are unavailable right now"; !strings.Contains(string(body), want) {
		t.Errorf("body = %q, want it to contain %q", body, want)
	}
}

func TestExplorerHandler_Image(t *testing.T) {
	match := &models.GBIFMatch{MatchType: "EXACT", SpeciesKey: int64Ptr(42), GenusKey: int64Ptr(1)}
	image := &phylopic.ImageReference{URL: "https://images.phylopic.org/a.svg", Link: "https://www.phylopic.org/images/a"}

	tests := []struct {
		name             string
		url              string
		match            *models.GBIFMatch
		gbifErr          error
		resolveErr       error
		wantImage        bool
		wantResolveCalls int
	}{
		{"resolved", "/data/image?name=Bombus&rank=Genus", match, nil, nil, true, 1},
		{"no gbif match", "/data/image?name=Nothing&rank=species", nil, nil, nil, false, 0},
		{"gbif failure", "/data/image?name=Bombus&rank=genus", nil, &upstream.TransportError{Service: "gbif", Op: "match", Err: errors.New("x")}, nil, false, 0},
		{"resolution failure", "/data/image?name=Bombus&rank=genus", match, nil, &phylopic.ResolutionError{Step: phylopic.StepAsset, Err: errors.New("missing")}, false, 1},
		{"unknown rank", "/data/image?name=Bombus&rank=clade", match, nil, nil, false, 0},
		{"missing name", "/data/image?rank=genus", match, nil, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := bombusClient()
			client.match = tt.match
			client.gbifErr = tt.gbifErr
			resolver := &fakeResolver{image: image, err: tt.resolveErr}
			if tt.resolveErr != nil {
				resolver.image = nil
			}
			app, views := newExplorerApp(client, resolver)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}

			name, data := views.last()
			if name != "partials/image" {
				t.Errorf("rendered view = %q, want partials/image", name)
			}
			_, gotImage := data["Image"]
			if gotImage != tt.wantImage {
				t.Errorf("Image set = %v, want %v", gotImage, tt.wantImage)
			}
			if resolver.calls != tt.wantResolveCalls {
				t.Errorf("Resolve calls = %d, want %d", resolver.calls, tt.wantResolveCalls)
			}
		})
	}
}

func TestExplorerHandler_Download(t *testing.T) {
	app, _ := newExplorerApp(bombusClient(), &fakeResolver{})

	resp, err := app.Test(httptest.NewRequest("GET", "/data/download/T3", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		t.Fatalf("status = %d, want a redirect", resp.StatusCode)
	}
	want := "http://taxonomy.test/api/taxon/T3/download/specimens"
	if got := resp.Header.Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}
