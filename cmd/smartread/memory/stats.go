package memorycmder

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/memory"
)

func newStatsCmd(c *commander) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count memories per source page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd, func(ctx context.Context, store memory.Store, userID string) error {
				memories, err := store.List(ctx, userID)
				if err != nil {
					return err
				}

				summary := memory.Summarize(memories)
				if jsonOut {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}

				printSummary(cmd.OutOrStdout(), userID, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print stats as JSON")
	c.addFlags(cmd)

	return cmd
}

func printSummary(w io.Writer, userID string, s memory.Summary) {
	fmt.Fprintf(w, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render(fmt.Sprintf("%d memories", s.Total)),
		cliui.DimStyle.Render("for "+userID))

	sources := slices.SortedFunc(maps.Keys(s.BySource), func(a, b string) int {
		if n := cmp.Compare(s.BySource[b], s.BySource[a]); n != 0 {
			return n
		}
		return cmp.Compare(a, b)
	})
	for _, src := range sources {
		fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%4d", s.BySource[src])), src)
	}
	fmt.Fprintln(w)
}
