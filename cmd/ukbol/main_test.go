package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"ukbol/internal/phylopic"
	"ukbol/internal/upstream"
)

// newFakeUpstream serves the taxonomy API, GBIF and PhyloPic from one host.
func newFakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/taxon/T1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"T1","name":"Bombus","rank":"Genus","parent":"T0","children":[],"synonyms":[]}`))
	})
	mux.HandleFunc("GET /api/taxon/T1/parents", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`["T0","ROOT"]`))
	})
	mux.HandleFunc("GET /species/match", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Nothing" {
			w.Write([]byte(`{"matchType":"NONE","confidence":100,"synonym":false}`))
			return
		}
		w.Write([]byte(`{"usageKey":1340278,"matchType":"EXACT","genusKey":1340278,"kingdomKey":1}`))
	})
	mux.HandleFunc("GET /resolve/gbif.org/species", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_links":{"primaryImage":{"href":"/images/abc?build=1"}}}`))
	})
	mux.HandleFunc("GET /images/abc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_links":{"vectorFile":{"href":"https://images.phylopic.org/abc/vector.svg"},"thumbnailFiles":[{"href":"https://images.phylopic.org/abc/thumb/64x64.png"}]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestTaxonGet(t *testing.T) {
	srv := newFakeUpstream(t)

	out, err := run(t, "--api-url", srv.URL, "taxon", "get", "T1")
	if err != nil {
		t.Fatalf("taxon get error = %v", err)
	}
	var taxon struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &taxon); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if taxon.Name != "Bombus" {
		t.Errorf("name = %q, want Bombus", taxon.Name)
	}
}

func TestTaxonGet_NotFound(t *testing.T) {
	srv := newFakeUpstream(t)

	_, err := run(t, "--api-url", srv.URL, "taxon", "get", "MISSING")
	if err == nil {
		t.Fatal("expected an error for an unknown taxon")
	}
	if !strings.Contains(err.Error(), upstream.ErrNotFound.Error()) {
		t.Errorf("error = %v, want it to mention not found", err)
	}
}

func TestTaxonParents(t *testing.T) {
	srv := newFakeUpstream(t)

	out, err := run(t, "--api-url", srv.URL, "taxon", "parents", "T1")
	if err != nil {
		t.Fatalf("taxon parents error = %v", err)
	}
	var parents []string
	json.Unmarshal([]byte(out), &parents)
	if diff := cmp.Diff([]string{"T0", "ROOT"}, parents); diff != "" {
		t.Errorf("parents mismatch (-want +got):\n%s", diff)
	}
}

func TestTaxonDownloadURL(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--api-url", "https://ukbol.example", "taxon", "download-url", "T1"}, "https://ukbol.example/api/taxon/T1/download/specimens\n"},
		{[]string{"taxon", "download-url", "--relative", "T1"}, "/api/taxon/T1/download/specimens\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("download-url error = %v", err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestGBIF_NoMatchPrintsNull(t *testing.T) {
	srv := newFakeUpstream(t)

	out, err := run(t, "--gbif-url", srv.URL, "gbif", "Nothing", "species")
	if err != nil {
		t.Fatalf("gbif error = %v", err)
	}
	if strings.TrimSpace(out) != "null" {
		t.Errorf("output = %q, want null", out)
	}
}

func TestImage(t *testing.T) {
	srv := newFakeUpstream(t)

	tests := []struct {
		asset string
		want  phylopic.ImageReference
	}{
		{"vector", phylopic.ImageReference{
			URL:  "https://images.phylopic.org/abc/vector.svg",
			Link: "https://phylopic.example/images/abc?build=1",
		}},
		{"thumbnail", phylopic.ImageReference{
			URL:  "https://images.phylopic.org/abc/thumb/64x64.png",
			Link: "https://phylopic.example/images/abc?build=1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			out, err := run(t,
				"--gbif-url", srv.URL,
				"--phylopic-url", srv.URL,
				"--phylopic-site-url", "https://phylopic.example",
				"image", "Bombus", "genus", "--asset", tt.asset,
			)
			if err != nil {
				t.Fatalf("image error = %v", err)
			}
			var got phylopic.ImageReference
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("image mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImage_Errors(t *testing.T) {
	srv := newFakeUpstream(t)

	if _, err := run(t, "--gbif-url", srv.URL, "image", "Nothing", "species"); err == nil || !strings.Contains(err.Error(), "no GBIF match") {
		t.Errorf("no match error = %v", err)
	}
	if _, err := run(t, "--gbif-url", srv.URL, "image", "Bombus", "genus", "--asset", "raster"); err == nil {
		t.Error("expected an error for an unknown asset kind")
	}
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := run(t, "migrate"); err == nil {
		t.Error("expected an error without a database URL")
	}
}

func TestTaxonGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := runContext(t, ctx, "--api-url", srv.URL, "taxon", "get", "T1")
	if !errors.Is(err, upstream.ErrCancelled) {
		t.Errorf("taxon get error = %v, want ErrCancelled", err)
	}
}
