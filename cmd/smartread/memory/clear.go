package memorycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/memory"
)

func newClearCmd(c *commander) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every memory",
		Long: `Delete every memory for the configured user.

The deduplication cache is left alone; run 'smartread dedup clear' as well
to allow the same pages to be added again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete memories without --yes")
			}

			return c.withStore(cmd, func(ctx context.Context, store memory.Store, userID string) error {
				n, err := store.DeleteAll(ctx, userID)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Deleted %d memories for %s\n\n",
					cliui.SuccessMark, n, cliui.NameStyle.Render(userID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	c.addFlags(cmd)

	return cmd
}
