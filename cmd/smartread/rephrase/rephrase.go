// Package rephrasecmder provides the rephrase command that rewrites a page
// in light of what the reader already has in memory.
package rephrasecmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/cliui"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
)

type rephraseCommander struct {
	maxMemories        int
	relevanceThreshold float64
	jsonOut            bool
	raw                bool
	backend            cmdutil.BackendFlags
	flagKeys           []string

	build pipeline.Builder
}

const rephraseLongDesc string = `Rephrase a page using relevant memories.

Topics are extracted from the page, memories matching them are retrieved,
and the LLM rewrites the page in two sections: a recap that links back to
what you have already read, and the remaining fresh content in the
author's voice.

The page is read from the given file, or from stdin when no file is given.
Output is rendered as markdown on a terminal; use --raw for plain text.

Examples:
  smartread rephrase article.txt
  smartread rephrase article.txt --max-memories 3 --relevance-threshold 0.5
  cat article.txt | smartread rephrase --json`

const rephraseShortDesc string = "Rephrase a page using relevant memories"

func NewRephraseCmd() *cobra.Command {
	return newRephraseCmd(&rephraseCommander{build: pipeline.New})
}

func newRephraseCmd(cmder *rephraseCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rephrase [file]",
		Short: rephraseShortDesc,
		Long:  rephraseLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddIntFlag(cmd, config.Flags, config.FlagMaxMemories, &cmder.maxMemories)
	config.AddFloatFlag(cmd, config.Flags, config.FlagRelevanceThreshold, &cmder.relevanceThreshold)
	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the rephrased markdown without rendering")
	cmder.flagKeys = append(cmder.backend.Register(cmd), config.FlagMaxMemories, config.FlagRelevanceThreshold)

	return cmd
}

func (c *rephraseCommander) run(cmd *cobra.Command, args []string) error {
	content, err := cmdutil.ReadContent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	cfg, err := cmdutil.LoadConfig(cmd, c.flagKeys...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, err := c.build(ctx, pipeline.Options{
		Config:    cfg,
		ConfigDir: cmdutil.ConfigDir(cmd),
		Logger:    cmdutil.Logger(cmd, cfg, false),
	})
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	opts := p.RephraseDefaults()

	if c.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Rephraser.Rephrase(ctx, content, opts))
	}

	var res *rephrase.Result
	err = cliui.Step(cmd.ErrOrStderr(), "Rephrasing with your memories", func() error {
		res = p.Rephraser.Rephrase(ctx, content, opts)
		if !res.Success && res.Error != rephrase.ErrNoRelevantMemories.Error() {
			return errors.New(res.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !res.Success {
		fmt.Fprintf(out, "\n  %s %s\n\n", cliui.SkipMark,
			cliui.DimStyle.Render("No relevant memories found; nothing to rephrase."))
		return nil
	}

	printMemories(out, res.RelevantMemories)

	if c.raw {
		fmt.Fprintln(out, res.RephrasedContent)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(res.RephrasedContent)
	if err != nil {
		fmt.Fprintln(out, res.RephrasedContent)
		return nil
	}
	fmt.Fprint(out, rendered)
	return nil
}

func printMemories(w io.Writer, memories []memory.Memory) {
	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render(fmt.Sprintf("Using %d memories", len(memories))))
	for _, m := range memories {
		line := fmt.Sprintf("  %s %s", cliui.KeyStyle.Render(fmt.Sprintf("%.2f", m.Score)), m.Text)
		if src := memory.SourceURL(m); src != "" {
			line += " " + cliui.DimStyle.Render("("+src+")")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}
