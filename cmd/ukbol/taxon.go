package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ukbol/internal/taxonapi"
)

func newTaxonCmd(opts *options) *cobra.Command {
	taxonCmd := &cobra.Command{
		Use:   "taxon",
		Short: "Look up taxa in the taxonomy API",
		Long: `Look up taxa in the taxonomy API.

Subcommands:
  get           - Fetch a single taxon
  roots         - List the roots of the taxonomy
  parents       - List the ancestor ids of a taxon, immediate parent first
  suggest       - Suggest taxa by name prefix
  bins          - List the BINs containing a taxon's specimens
  download-url  - Print the specimen CSV export URL of a taxon`,
	}

	getCmd := &cobra.Command{
		Use:   "get <taxon-id>",
		Short: "Fetch a single taxon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxon, err := opts.client().GetTaxon(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get taxon %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), taxon)
		},
	}

	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "List the roots of the taxonomy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := opts.client().GetRoots(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to get roots: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), roots)
		},
	}

	parentsCmd := &cobra.Command{
		Use:   "parents <taxon-id>",
		Short: "List the ancestor ids of a taxon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parents, err := opts.client().GetTaxonParents(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get parents of %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), parents)
		},
	}

	var size int
	suggestCmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Suggest taxa by name prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxa, err := opts.client().GetSuggestions(commandContext(cmd), args[0], size)
			if err != nil {
				return fmt.Errorf("failed to get suggestions for %q: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), taxa)
		},
	}
	suggestCmd.Flags().IntVar(&size, "size", 10, "Number of suggestions to request")

	binsCmd := &cobra.Command{
		Use:   "bins <taxon-id>",
		Short: "List the BINs containing a taxon's specimens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bins, err := opts.client().GetTaxonBins(commandContext(cmd), args[0])
			if err != nil {
				return fmt.Errorf("failed to get bins of %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), bins)
		},
	}

	var relative bool
	downloadURLCmd := &cobra.Command{
		Use:   "download-url <taxon-id>",
		Short: "Print the specimen CSV export URL of a taxon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if relative {
				fmt.Fprintln(cmd.OutOrStdout(), taxonapi.BuildDownloadURL(args[0]))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.client().DownloadURL(args[0]))
			return nil
		},
	}
	downloadURLCmd.Flags().BoolVar(&relative, "relative", false, "Print the path without the API base URL")

	taxonCmd.AddCommand(getCmd, rootsCmd, parentsCmd, suggestCmd, binsCmd, downloadURLCmd)
	return taxonCmd
}

func newGBIFCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gbif <name> <rank>",
		Short: "Match a name against the GBIF backbone",
		Long: `Match a name at a rank against the GBIF backbone taxonomy.

Prints the match record, or null when GBIF found no match.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			match, err := opts.client().GetGBIFData(commandContext(cmd), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to match %q: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), match)
		},
	}
}
