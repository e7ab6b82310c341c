package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ukbol/internal/phylopic"
)

func newImageCmd(opts *options, defaultAsset string) *cobra.Command {
	var asset string

	imageCmd := &cobra.Command{
		Use:   "image <name> <rank>",
		Short: "Resolve the PhyloPic silhouette for a name",
		Long: `Match a name against GBIF and resolve its PhyloPic silhouette.

Prints {"url": ..., "link": ...}. Exits with an error naming the failed step
when no image can be resolved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := phylopic.ParseAssetKind(asset)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			match, err := opts.client().GetGBIFData(ctx, args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to match %q: %w", args[0], err)
			}
			if match == nil {
				return fmt.Errorf("no GBIF match for %q at rank %s", args[0], args[1])
			}

			image, err := opts.resolver(kind).Resolve(ctx, match)
			if err != nil {
				var re *phylopic.ResolutionError
				if errors.As(err, &re) {
					return fmt.Errorf("no image for %q (failed at %s): %w", args[0], re.Step, re.Err)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), image)
		},
	}
	imageCmd.Flags().StringVar(&asset, "asset", defaultAsset, "Display asset to return: vector or thumbnail")

	return imageCmd
}
