package memorycmder

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/memory"
)

func newBrowseCmd(c *commander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse memories interactively",
		Long: `Browse memories in a terminal UI.

Move with j/k, open a memory with enter, go back with esc, toggle the sort
order with s and quit with q.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !cliui.IsTerminal(out) {
				return fmt.Errorf("memory browse needs a terminal; use 'smartread memory stats' or 'search' instead")
			}

			return c.withStore(cmd, func(ctx context.Context, store memory.Store, userID string) error {
				memories, err := store.List(ctx, userID)
				if err != nil {
					return err
				}

				renderer := lipgloss.NewRenderer(out, termenv.WithProfile(termenv.EnvColorProfile()))
				lipgloss.SetDefaultRenderer(renderer)

				program := tea.NewProgram(newBrowseModel(userID, memories),
					tea.WithContext(ctx),
					tea.WithAltScreen(),
					tea.WithInput(cmd.InOrStdin()),
					tea.WithOutput(out),
				)
				_, err = program.Run()
				return err
			})
		},
	}

	c.addFlags(cmd)

	return cmd
}
