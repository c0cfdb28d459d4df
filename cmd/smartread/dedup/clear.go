package dedupcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
)

func newClearCmd(c *commander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every record",
		Long:  "Remove every record from the deduplication cache. Memories are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCache(cmd, func(ctx context.Context, cache *dedup.Cache, _ *config.Config) error {
				n, err := cache.Clear(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Cleared %d records\n\n", cliui.SuccessMark, n)
				return nil
			})
		},
	}

	c.addFlags(cmd)

	return cmd
}
