// Package api provides the HTTP API the smartread browser extension talks to.
package api

import (
	"net/http"
	"time"

	"github.com/papercomputeco/smartread/pkg/dedup"
	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/session"
)

// DefaultRequestTimeout bounds a single request when Config.RequestTimeout
// is zero.
const DefaultRequestTimeout = 60 * time.Second

// EventHistory exposes recently emitted events.
type EventHistory interface {
	History(limit int) []*eventstream.Event
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8787")
	ListenAddr string

	// RequestTimeout bounds the work done for one request.
	RequestTimeout time.Duration

	// UserID scopes memory reads and deletes.
	UserID string

	// RephraseDefaults are merged with per-request overrides.
	RephraseDefaults rephrase.Options

	Ingester  *ingest.Ingester
	Rephraser *rephrase.Rephraser
	Dedup     *dedup.Cache
	Memories  memory.Store
	Sessions  *session.Registry

	// Events is optional; without it GET /v1/events returns an empty list.
	Events EventHistory

	// MCPHandler is optional; when set it is mounted at /mcp.
	MCPHandler http.Handler
}
