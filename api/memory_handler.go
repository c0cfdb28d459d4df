package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/smartread/pkg/memory"
)

// DefaultSearchLimit is used when GET /v1/memories/search has no limit.
const DefaultSearchLimit = 10

// MemoryListResponse is the body of GET /v1/memories.
type MemoryListResponse struct {
	Total    int             `json:"total"`
	Memories []memory.Memory `json:"memories"`
	BySource map[string]int  `json:"by_source"`
}

// handleMemorySearch runs a raw store search.
// Query parameters:
//   - q (required): the search query text
//   - limit (optional, default 10): number of results to return
func (s *Server) handleMemorySearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return fail(c, fiber.StatusBadRequest, "q parameter is required")
	}

	limit := DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return fail(c, fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	found, err := s.config.Memories.Search(ctx, query, s.userID(), limit)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if found == nil {
		found = []memory.Memory{}
	}

	return c.JSON(map[string]any{
		"query":    query,
		"count":    len(found),
		"memories": found,
	})
}

// handleMemoryList returns every memory of the user with per-source counts.
func (s *Server) handleMemoryList(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	all, err := s.config.Memories.List(ctx, s.userID())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if all == nil {
		all = []memory.Memory{}
	}

	summary := memory.Summarize(all)
	return c.JSON(MemoryListResponse{
		Total:    summary.Total,
		Memories: all,
		BySource: summary.BySource,
	})
}

func (s *Server) handleMemoryClear(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	n, err := s.config.Memories.DeleteAll(ctx, s.userID())
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(map[string]any{"removed": n})
}

func (s *Server) userID() string {
	return s.config.UserID
}
