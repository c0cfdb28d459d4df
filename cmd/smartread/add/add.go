// Package addcmder provides the add command that turns a page into memory
// snippets.
package addcmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/ingest"
)

type addCommander struct {
	source       string
	force        bool
	jsonOut      bool
	maxCacheSize int
	backend      cmdutil.BackendFlags
	flagKeys     []string

	build  pipeline.Builder
	logger *slog.Logger
}

const addLongDesc string = `Add a page to memory.

The page content is read from the given file, or from stdin when no file
is given. Without --source the page is identified by its file path, or as
"stdin". The configured LLM condenses it into a few short snippets which
are written to the memory store. Content that was already added is skipped
unless --force is given.

Examples:
  smartread add article.txt --source https://example.com/post
  curl -s https://example.com/post.txt | smartread add -u https://example.com/post
  smartread add article.txt --force --json`

const addShortDesc string = "Add a page to memory"

func NewAddCmd() *cobra.Command {
	return newAddCmd(&addCommander{build: pipeline.New})
}

func newAddCmd(cmder *addCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.source, "source", "u", "", "URL the content was read from")
	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Add even if the content was added before")
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the result as JSON")
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxCacheSize, &cmder.maxCacheSize)
	cmder.flagKeys = append(cmder.backend.Register(cmd), config.FlagMaxCacheSize)

	return cmd
}

func (c *addCommander) run(cmd *cobra.Command, args []string) error {
	content, err := cmdutil.ReadContent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := cmdutil.LoadConfig(cmd, c.flagKeys...)
	if err != nil {
		return err
	}
	c.logger = cmdutil.Logger(cmd, cfg, false)

	ctx := cmd.Context()
	p, err := c.build(ctx, pipeline.Options{
		Config:    cfg,
		ConfigDir: cmdutil.ConfigDir(cmd),
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	source := cmdutil.SourceID(c.source, args)
	opts := ingest.Options{Force: c.force}

	if c.jsonOut {
		res, err := p.Ingester.AddPageToMemory(ctx, content, source, opts)
		if err != nil {
			return err
		}
		return writeJSON(out, res)
	}

	var res *ingest.Result
	err = cliui.Step(out, "Adding page to memory", func() error {
		var err error
		res, err = p.Ingester.AddPageToMemory(ctx, content, source, opts)
		if err != nil {
			return err
		}
		if !res.Success && !res.Duplicate {
			return errors.New(res.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	printResult(out, res)
	return nil
}

func printResult(w io.Writer, res *ingest.Result) {
	if res.Duplicate {
		fmt.Fprintf(w, "\n  %s Already in memory %s\n\n",
			cliui.SkipMark,
			cliui.DimStyle.Render("(use --force to add it again)"),
		)
		return
	}

	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("Stored %d snippets", res.SnippetsCount)))
	for _, s := range res.Snippets {
		fmt.Fprintf(w, "  %s %s\n", cliui.SuccessMark, cliui.ValueStyle.Render(s))
	}
	if res.FailedWrites > 0 {
		fmt.Fprintf(w, "\n  %s %d snippets could not be written\n",
			cliui.WarnStyle.Render("!"), res.FailedWrites)
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
