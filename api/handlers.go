package api

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/papercomputeco/smartread/pkg/dedup"
	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/session"
)

const (
	// SessionHeader names the client session a rephrase belongs to.
	SessionHeader = "X-Smartread-Session"

	// CacheHeader reports whether a rephrase was served from the session
	// cache ("hit") or generated ("miss").
	CacheHeader = "X-Smartread-Cache"
)

// AddPageRequest is the body of POST /v1/pages/memory.
type AddPageRequest struct {
	Content   string         `json:"content"`
	SourceURL string         `json:"source_url"`
	Force     bool           `json:"force"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// RephraseRequest is the body of POST /v1/pages/rephrase.
type RephraseRequest struct {
	Content            string   `json:"content"`
	SourceURL          string   `json:"source_url"`
	MaxMemories        *int     `json:"max_memories,omitempty"`
	RelevanceThreshold *float64 `json:"relevance_threshold,omitempty"`
}

// CheckPageRequest is the body of POST /v1/pages/check.
type CheckPageRequest struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`
}

// CheckPageResponse reports whether a page was already ingested. Record is
// the exact content match; SourceRecord is the latest record for the same
// source, which may differ when the page changed.
type CheckPageResponse struct {
	Duplicate    bool          `json:"duplicate"`
	Record       *dedup.Record `json:"record,omitempty"`
	SourceRecord *dedup.Record `json:"source_record,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAddPage ingests a page into memory.
func (s *Server) handleAddPage(c *fiber.Ctx) error {
	var req AddPageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if _, err := fingerprint.Fingerprint(req.Content, req.SourceURL); err != nil {
		return fail(c, fiber.StatusBadRequest, "content and source_url are required")
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	res, err := s.config.Ingester.AddPageToMemory(ctx, req.Content, req.SourceURL, ingest.Options{
		Force:    req.Force,
		Metadata: req.Metadata,
	})
	if err != nil {
		s.logger.Error("add page failed", "source_url", req.SourceURL, "error", err)
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(res)
}

// handleRephrase rewrites a page around the reader's memories. Successful
// results are cached per session and page.
func (s *Server) handleRephrase(c *fiber.Ctx) error {
	var req RephraseRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" || !utf8.ValidString(req.Content) {
		return fail(c, fiber.StatusBadRequest, "content is required")
	}

	pageKey, err := session.PageKey(req.SourceURL, req.Content)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	// Header values alias fasthttp's request buffer, which is reused after
	// the handler returns.
	sessionID := utils.CopyString(c.Get(SessionHeader, session.DefaultID))
	cache := s.config.Sessions.Cache(sessionID)

	opts := s.RephraseDefaults().Merge(rephrase.Overrides{
		MaxMemories:        req.MaxMemories,
		RelevanceThreshold: req.RelevanceThreshold,
	})
	resultKey := rephraseKey(pageKey, opts)

	if cached, ok := cache.Get(resultKey); ok {
		c.Set(CacheHeader, "hit")
		return c.JSON(cached)
	}

	res := s.sharedRephrase(c.UserContext(), sessionID+"\x00"+resultKey, req.Content, opts)

	if res.Success {
		cache.Set(resultKey, res)
	}

	c.Set(CacheHeader, "miss")
	return c.JSON(res)
}

// sharedRephrase runs one rewrite per key at a time. The work runs on a
// context detached from the caller that started it, so a cancelled first
// caller does not fail the callers waiting on the same key.
func (s *Server) sharedRephrase(parent context.Context, key, content string, opts rephrase.Options) *rephrase.Result {
	v, _, _ := s.rephrases.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.config.RequestTimeout)
		defer cancel()
		return s.config.Rephraser.Rephrase(ctx, content, opts), nil
	})
	return v.(*rephrase.Result)
}

// rephraseKey scopes a cached result to the page and the options it was
// produced with.
func rephraseKey(pageKey string, opts rephrase.Options) string {
	return pageKey + "|" + strconv.Itoa(opts.MaxMemories) + "|" +
		strconv.FormatFloat(opts.RelevanceThreshold, 'g', -1, 64)
}

// handleCheckPage reports whether a page has been ingested without writing
// anything.
func (s *Server) handleCheckPage(c *fiber.Ctx) error {
	var req CheckPageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	rec, err := s.config.Dedup.CheckDuplicate(ctx, req.Content, req.SourceURL)
	if errors.Is(err, fingerprint.ErrInvalidInput) {
		return fail(c, fiber.StatusBadRequest, "content and source_url are required")
	}
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	srcRec, err := s.config.Dedup.CheckSource(ctx, req.SourceURL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(CheckPageResponse{
		Duplicate:    rec != nil,
		Record:       rec,
		SourceRecord: srcRec,
	})
}

// handleEndSession drops a session's page cache.
func (s *Server) handleEndSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.config.Sessions.End(id) {
		return fail(c, fiber.StatusNotFound, "session not found")
	}
	return c.JSON(map[string]any{"ended": id})
}
