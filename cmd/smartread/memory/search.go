package memorycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/memory"
)

const defaultSearchLimit = 10

func newSearchCmd(c *commander) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			return c.withStore(cmd, func(ctx context.Context, store memory.Store, userID string) error {
				results, err := store.Search(ctx, query, userID, limit)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if jsonOut {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(results)
				}

				if len(results) == 0 {
					fmt.Fprintf(w, "\n  %s No memories match %q\n\n", cliui.DimStyle.Render("●"), query)
					return nil
				}

				fmt.Fprintln(w)
				for _, m := range results {
					fmt.Fprintf(w, "  %s %s\n", cliui.KeyStyle.Render(fmt.Sprintf("%.3f", m.Score)), m.Text)
					if src := memory.SourceURL(m); src != "" {
						fmt.Fprintf(w, "        %s\n", cliui.DimStyle.Render(src))
					}
				}
				fmt.Fprintln(w)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultSearchLimit, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	c.addFlags(cmd)

	return cmd
}
