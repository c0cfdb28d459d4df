// Package mcp provides an MCP (Model Context Protocol) server exposing the
// smartread pipeline as tools.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/utils"
)

type Config struct {
	// Ingester backs the page_add tool
	Ingester *ingest.Ingester

	// Rephraser backs the page_rephrase tool
	Rephraser *rephrase.Rephraser

	// Memories backs the memory_search tool
	Memories memory.Searcher

	// UserID scopes memory_search (defaults to the ingest user)
	UserID string

	// RephraseDefaults returns the options merged with tool arguments.
	// Defaults to rephrase.DefaultOptions.
	RephraseDefaults func() rephrase.Options

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the smartread tools.
func NewServer(c Config) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "smartread",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	s := &Server{
		mcpServer: mcpServer,
		handler: mcp.NewStreamableHTTPHandler(
			func(_ *http.Request) *mcp.Server {
				return mcpServer
			},
			&mcp.StreamableHTTPOptions{
				Stateless: true,
			},
		),
	}

	if c.Noop {
		// no tools: MCP capabilities are disabled
		s.config = c
		return s, nil
	}

	if c.Ingester == nil {
		return nil, errors.New("ingester is required")
	}
	if c.Rephraser == nil {
		return nil, errors.New("rephraser is required")
	}
	if c.Memories == nil {
		return nil, errors.New("memory store is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.UserID == "" {
		c.UserID = ingest.DefaultUserID
	}
	if c.RephraseDefaults == nil {
		c.RephraseDefaults = rephrase.DefaultOptions
	}
	s.config = c

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memorySearchToolName,
		Description: memorySearchDescription,
	}, s.handleMemorySearch)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        pageAddToolName,
		Description: pageAddDescription,
	}, s.handlePageAdd)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        pageRephraseToolName,
		Description: pageRephraseDescription,
	}, s.handlePageRephrase)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// toolResult serializes output into a text block alongside the structured
// result, for clients that only read text content.
func toolResult(output any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError("Failed to serialize results: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
