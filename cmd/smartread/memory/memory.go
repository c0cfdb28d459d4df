// Package memorycmder provides the memory command for inspecting the memory
// store.
package memorycmder

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/memory"
)

const memoryLongDesc string = `Inspect the memory store.

Memories are the short snippets smartread add writes for each page. They
are scoped to memory.user_id.

Use subcommands:
  smartread memory stats            Count memories per source page
  smartread memory search <query>   Search memories
  smartread memory browse           Browse memories interactively
  smartread memory clear --yes      Delete every memory`

const memoryShortDesc string = "Inspect the memory store"

type commander struct {
	memoryProvider    string
	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint

	build pipeline.Builder
}

var memoryFlags = []string{
	config.FlagMemoryProvider,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewMemoryCmd() *cobra.Command {
	return newMemoryCmd(pipeline.New)
}

func newMemoryCmd(build pipeline.Builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: memoryShortDesc,
		Long:  memoryLongDesc,
	}

	cmd.AddCommand(newStatsCmd(&commander{build: build}))
	cmd.AddCommand(newSearchCmd(&commander{build: build}))
	cmd.AddCommand(newBrowseCmd(&commander{build: build}))
	cmd.AddCommand(newClearCmd(&commander{build: build}))

	return cmd
}

func (c *commander) addFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &c.memoryProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &c.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &c.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &c.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &c.embeddingDims)
}

// withStore opens the configured memory store and hands it to fn with the
// configured user id.
func (c *commander) withStore(cmd *cobra.Command, fn func(ctx context.Context, store memory.Store, userID string) error) error {
	cfg, err := cmdutil.LoadConfig(cmd, memoryFlags...)
	if err != nil {
		return err
	}

	p, err := c.build(cmd.Context(), pipeline.Options{
		Config:        cfg,
		ConfigDir:     cmdutil.ConfigDir(cmd),
		SkipGenerator: true,
		Logger:        cmdutil.Logger(cmd, cfg, false),
	})
	if err != nil {
		return err
	}
	defer p.Close()

	return fn(cmd.Context(), p.Memories, cfg.Memory.UserID)
}
