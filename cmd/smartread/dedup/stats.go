package dedupcmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
)

func newStatsCmd(c *commander) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record count and age range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withCache(cmd, func(ctx context.Context, cache *dedup.Cache, cfg *config.Config) error {
				stats, err := cache.Stats(ctx)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if jsonOut {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(stats)
				}

				limit := "unbounded"
				if cfg.Dedup.MaxCacheSize > 0 {
					limit = fmt.Sprintf("%d", cfg.Dedup.MaxCacheSize)
				}

				fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render("Deduplication cache"))
				fmt.Fprintf(w, "  %s  %d %s\n", cliui.KeyStyle.Render("records"), stats.Records, cliui.DimStyle.Render("/ "+limit))
				fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("oldest "), formatTime(stats.Oldest))
				fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render("newest "), formatTime(stats.Newest))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print stats as JSON")
	c.addFlags(cmd)

	return cmd
}
