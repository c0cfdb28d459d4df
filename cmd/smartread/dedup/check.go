package dedupcmder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
)

const checkLongDesc string = `Check whether content was already added.

With a file (or content piped on stdin) the exact content is looked up
under the same source identifier smartread add would use.
With only --source and no content the latest record for that page is
shown, whatever its content was. Checking never writes to the cache.

Examples:
  smartread dedup check article.txt -u https://example.com/post
  smartread dedup check -u https://example.com/post`

func newCheckCmd(c *commander) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check whether content was already added",
		Long:  checkLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cmdutil.ReadContent(cmd.InOrStdin(), args)
			bySource := errors.Is(err, cmdutil.ErrNoContent) && len(args) == 0 && source != ""
			if err != nil && !bySource {
				return err
			}

			return c.withCache(cmd, func(ctx context.Context, cache *dedup.Cache, _ *config.Config) error {
				var (
					rec *dedup.Record
					err error
				)
				if bySource {
					rec, err = cache.CheckSource(ctx, source)
				} else {
					rec, err = cache.CheckDuplicate(ctx, content, cmdutil.SourceID(source, args))
				}
				if err != nil {
					return err
				}

				printRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "u", "", "URL the content was read from")
	c.addFlags(cmd)

	return cmd
}

func printRecord(w io.Writer, rec *dedup.Record) {
	if rec == nil {
		fmt.Fprintf(w, "\n  %s Not seen before\n\n", cliui.DimStyle.Render("●"))
		return
	}

	fmt.Fprintf(w, "\n  %s Already added\n\n", cliui.SuccessMark)
	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("fingerprint "), cliui.ValueStyle.Render(rec.Fingerprint))
	if rec.SourceID != "" {
		fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("source      "), cliui.ValueStyle.Render(rec.SourceID))
	}
	fmt.Fprintf(w, "  %s  %s\n", cliui.KeyStyle.Render("processed at"), cliui.ValueStyle.Render(formatTime(&rec.ProcessedAt)))
	fmt.Fprintf(w, "  %s  %d\n\n", cliui.KeyStyle.Render("length      "), rec.ContentLength)
}
