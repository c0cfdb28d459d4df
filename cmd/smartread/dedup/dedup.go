// Package dedupcmder provides the dedup command for inspecting and
// maintaining the deduplication cache.
package dedupcmder

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
)

const dedupLongDesc string = `Inspect and maintain the deduplication cache.

The cache remembers which page content has already been added to memory so
the same page is not condensed twice. Records are bounded by
dedup.max_cache_size and can expire after dedup.allow_duplicate_after_days.

Use subcommands:
  smartread dedup check [file]   Check whether content was already added
  smartread dedup stats          Show record count and age range
  smartread dedup trim           Drop the oldest records
  smartread dedup clear          Remove every record`

const dedupShortDesc string = "Inspect and maintain the deduplication cache"

// commander carries what every dedup subcommand needs to open the cache.
type commander struct {
	storageDriver string
	sqlitePath    string

	build pipeline.Builder
}

func NewDedupCmd() *cobra.Command {
	return newDedupCmd(pipeline.New)
}

func newDedupCmd(build pipeline.Builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: dedupShortDesc,
		Long:  dedupLongDesc,
	}

	cmd.AddCommand(newCheckCmd(&commander{build: build}))
	cmd.AddCommand(newStatsCmd(&commander{build: build}))
	cmd.AddCommand(newTrimCmd(&commander{build: build}))
	cmd.AddCommand(newClearCmd(&commander{build: build}))

	return cmd
}

func (c *commander) addFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &c.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &c.sqlitePath)
}

// open builds a pipeline holding only the dedup cache.
func (c *commander) open(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	cfg, err := cmdutil.LoadConfig(cmd, config.FlagStorageDriver, config.FlagSQLite)
	if err != nil {
		return nil, err
	}

	return c.build(cmd.Context(), pipeline.Options{
		Config:     cfg,
		ConfigDir:  cmdutil.ConfigDir(cmd),
		SkipMemory: true,
		Logger:     cmdutil.Logger(cmd, cfg, false),
	})
}

func (c *commander) withCache(cmd *cobra.Command, fn func(context.Context, *dedup.Cache, *config.Config) error) error {
	p, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	return fn(cmd.Context(), p.Dedup, p.Config)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
