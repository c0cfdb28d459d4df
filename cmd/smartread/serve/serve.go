// Package servecmder provides the serve command that runs the smartread HTTP
// API and its MCP endpoint.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/smartread/api"
	"github.com/papercomputeco/smartread/api/mcp"
	"github.com/papercomputeco/smartread/cmd/smartread/cmdutil"
	"github.com/papercomputeco/smartread/cmd/smartread/pipeline"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/dedup"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/rephrase"
)

type ServeCommander struct {
	listen             string
	llmProvider        string
	llmModel           string
	memoryProvider     string
	embeddingProvider  string
	embeddingTarget    string
	embeddingModel     string
	embeddingDims      uint
	storageDriver      string
	sqlitePath         string
	maxMemories        int
	relevanceThreshold float64
	maxCacheSize       int

	jsonLogs bool
	logFile  string
	noMCP    bool

	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagLLMProvider,
	config.FlagLLMModel,
	config.FlagMemoryProvider,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagMaxMemories,
	config.FlagRelevanceThreshold,
	config.FlagMaxCacheSize,
}

const serveLongDesc string = `Run the smartread server.

The server exposes the HTTP API the browser extension talks to and, unless
--no-mcp is given, an MCP endpoint at /mcp offering the same operations as
tools.

Settings come from flags, then SMARTREAD_* environment variables, then
config.toml, then built-in defaults. While the server runs, edits to the
[rephrase] and [dedup] sections of config.toml are applied without a
restart.`

const serveShortDesc string = "Run the smartread API and MCP server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMProvider, &cmder.llmProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddStringFlag(cmd, config.Flags, config.FlagMemoryProvider, &cmder.memoryProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxMemories, &cmder.maxMemories)
	config.AddFloatFlag(cmd, config.Flags, config.FlagRelevanceThreshold, &cmder.relevanceThreshold)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxCacheSize, &cmder.maxCacheSize)

	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Write structured JSON logs")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Serve /mcp without any tools")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	cfg, err := cmdutil.LoadConfig(cmd, serveFlags...)
	if err != nil {
		return err
	}
	c.logger = cmdutil.Logger(cmd, cfg, c.jsonLogs)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithWriter(f),
			logger.WithJSON(true),
			logger.WithLevel(cfg.Log.Level),
		))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, pipeline.Options{
		Config:    cfg,
		ConfigDir: cmdutil.ConfigDir(cmd),
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			c.logger.Error("closing pipeline", "error", err)
		}
	}()

	var server *api.Server

	mcpServer, err := mcp.NewServer(mcp.Config{
		Ingester:  p.Ingester,
		Rephraser: p.Rephraser,
		Memories:  p.Memories,
		UserID:    cfg.Memory.UserID,
		RephraseDefaults: func() rephrase.Options {
			return server.RephraseDefaults()
		},
		Noop:   c.noMCP,
		Logger: c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	server, err = api.NewServer(api.Config{
		ListenAddr:       cfg.Server.Listen,
		RequestTimeout:   cfg.Server.Timeout(),
		UserID:           cfg.Memory.UserID,
		RephraseDefaults: p.RephraseDefaults(),
		Ingester:         p.Ingester,
		Rephraser:        p.Rephraser,
		Dedup:            p.Dedup,
		Memories:         p.Memories,
		Sessions:         p.Sessions,
		Events:           p.Events,
		MCPHandler:       mcpServer.Handler(),
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.watchConfig(ctx, cmd, server, p.Dedup)

	c.logger.Info("starting smartread server",
		"listen", cfg.Server.Listen,
		"llm", cfg.LLM.Provider,
		"memory", cfg.Memory.Provider,
		"storage", cfg.Storage.Driver,
		"mcp", !c.noMCP,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.logger.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("shutting down API server: %w", err)
		}
		return nil
	}
}

// watchConfig re-resolves the config whenever config.toml changes so flags
// and environment variables keep their precedence, then applies the parts
// that can change at runtime.
func (c *ServeCommander) watchConfig(ctx context.Context, cmd *cobra.Command, server defaultsSetter, cache *dedup.Cache) {
	cfger, err := config.NewConfiger(cmdutil.ConfigDir(cmd))
	if err != nil {
		c.logger.Warn("config reload disabled", "error", err)
		return
	}

	err = cfger.Watch(ctx,
		func(*config.Config) {
			cfg, err := cmdutil.LoadConfig(cmd, serveFlags...)
			if err != nil {
				c.logger.Warn("config reload failed", "error", err)
				return
			}
			applyReload(server, cache, cfg)
			c.logger.Info("config reloaded",
				"max_memories", cfg.Rephrase.MaxMemories,
				"relevance_threshold", cfg.Rephrase.RelevanceThreshold,
				"max_cache_size", cfg.Dedup.MaxCacheSize,
				"allow_duplicate_after_days", cfg.Dedup.AllowDuplicateAfterDays,
			)
		},
		func(err error) {
			c.logger.Warn("config reload failed", "error", err)
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("config reload disabled", "error", err)
	}
}

type defaultsSetter interface {
	SetRephraseDefaults(rephrase.Options)
}

func applyReload(server defaultsSetter, cache *dedup.Cache, cfg *config.Config) {
	server.SetRephraseDefaults(pipeline.RephraseOptions(cfg))
	cache.SetMaxSize(cfg.Dedup.MaxCacheSize)
	cache.SetExpiry(cfg.Dedup.Expiry())
}
