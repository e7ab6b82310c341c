// Command ukbol queries the taxonomy API, GBIF and PhyloPic from a terminal
// and manages the taxonomy database schema.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ukbol/internal/config"
	"ukbol/internal/phylopic"
	"ukbol/internal/taxonapi"
	"ukbol/internal/upstream"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	apiURL      string
	gbifURL     string
	phylopicURL string
	siteURL     string
	timeout     time.Duration
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ukbol",
		Short: "Query the UK Barcode of Life taxonomy",
		Long: `ukbol is a command line client for the UKBoL taxonomy API.

It looks up taxa, their ancestry and BINs, matches names against GBIF and
resolves PhyloPic silhouettes, printing JSON to stdout.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", cfg.TaxonAPIURL, "Taxonomy API base URL (or set TAXON_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.gbifURL, "gbif-url", cfg.GBIFAPIURL, "GBIF API root (or set GBIF_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.phylopicURL, "phylopic-url", cfg.PhyloPicAPIURL, "PhyloPic API root (or set PHYLOPIC_API_URL)")
	rootCmd.PersistentFlags().StringVar(&opts.siteURL, "phylopic-site-url", cfg.PhyloPicSiteURL, "PhyloPic site used for attribution links")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", cfg.UpstreamTimeout, "Per-request timeout")

	rootCmd.AddCommand(newTaxonCmd(opts))
	rootCmd.AddCommand(newGBIFCmd(opts))
	rootCmd.AddCommand(newImageCmd(opts, cfg.PhyloPicAssetKind))
	rootCmd.AddCommand(newMigrateCmd(cfg.DatabaseURL))

	return rootCmd
}

func (o *options) client() *taxonapi.Client {
	return taxonapi.New(o.apiURL,
		taxonapi.WithHTTPClient(upstream.NewHTTPClient(o.timeout)),
		taxonapi.WithGBIFURL(o.gbifURL),
	)
}

func (o *options) resolver(kind phylopic.AssetKind) *phylopic.Resolver {
	return phylopic.NewResolver(upstream.NewHTTPClient(o.timeout), nil,
		phylopic.WithAPIURL(o.phylopicURL),
		phylopic.WithSiteURL(o.siteURL),
		phylopic.WithAssetKind(kind),
	)
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func main() {
	// Ctrl-C cancels the in-flight request instead of killing the process
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
