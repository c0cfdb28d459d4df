package dedupcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
)

const trimLongDesc string = `Drop the oldest records until at most --max remain.

Without --max the configured dedup.max_cache_size is used.

Examples:
  smartread dedup trim
  smartread dedup trim --max 200`

func newTrimCmd(c *commander) *cobra.Command {
	var maxSize int

	cmd := &cobra.Command{
		Use:   "trim",
		Short: "Drop the oldest records",
		Long:  trimLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCache(cmd, func(ctx context.Context, cache *dedup.Cache, cfg *config.Config) error {
				limit := cfg.Dedup.MaxCacheSize
				if cmd.Flags().Changed("max") {
					limit = maxSize
				}
				if limit <= 0 {
					return errors.New("nothing to trim to: pass --max or set dedup.max_cache_size")
				}

				removed, err := cache.TrimCache(ctx, limit)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Removed %d records %s\n\n",
					cliui.SuccessMark, len(removed),
					cliui.DimStyle.Render(fmt.Sprintf("(keeping at most %d)", limit)))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxSize, "max", 0, "Number of records to keep")
	c.addFlags(cmd)

	return cmd
}
