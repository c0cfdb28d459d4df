package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/singleflight"

	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/lru"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/session"
)

// Server is the smartread HTTP API server.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App

	// rephrases collapses concurrent rewrites of the same page, session and
	// options into one generation.
	rephrases singleflight.Group

	defaultsMu sync.RWMutex
	defaults   rephrase.Options
}

// NewServer creates a new API server. The pipeline components are injected
// so the same instances can back the MCP server.
func NewServer(config Config, logger *slog.Logger) (*Server, error) {
	if config.Ingester == nil {
		return nil, errors.New("ingester is required")
	}
	if config.Rephraser == nil {
		return nil, errors.New("rephraser is required")
	}
	if config.Dedup == nil {
		return nil, errors.New("dedup cache is required")
	}
	if config.Memories == nil {
		return nil, errors.New("memory store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.Sessions == nil {
		config.Sessions = session.NewRegistry(lru.DefaultCapacity)
	}
	if config.UserID == "" {
		config.UserID = ingest.DefaultUserID
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		logger:   logger,
		app:      app,
		defaults: config.RephraseDefaults,
	}

	app.Get("/ping", s.handlePing)

	v1 := app.Group("/v1")
	v1.Post("/pages/memory", s.handleAddPage)
	v1.Post("/pages/rephrase", s.handleRephrase)
	v1.Post("/pages/check", s.handleCheckPage)

	v1.Post("/dedup/trim", s.handleDedupTrim)
	v1.Delete("/dedup", s.handleDedupClear)
	v1.Get("/dedup/stats", s.handleDedupStats)

	v1.Get("/memories/search", s.handleMemorySearch)
	v1.Get("/memories", s.handleMemoryList)
	v1.Delete("/memories", s.handleMemoryClear)

	v1.Get("/events", s.handleEvents)
	v1.Delete("/sessions/:id", s.handleEndSession)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// SetRephraseDefaults replaces the options merged into every rephrase
// request. It is safe to call while serving.
func (s *Server) SetRephraseDefaults(opts rephrase.Options) {
	s.defaultsMu.Lock()
	defer s.defaultsMu.Unlock()
	s.defaults = opts
}

// RephraseDefaults returns the current rephrase defaults.
func (s *Server) RephraseDefaults() rephrase.Options {
	s.defaultsMu.RLock()
	defer s.defaultsMu.RUnlock()
	return s.defaults
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), s.config.RequestTimeout)
}
