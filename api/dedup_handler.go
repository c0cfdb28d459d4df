package api

import (
	"github.com/gofiber/fiber/v2"
)

// TrimRequest is the optional body of POST /v1/dedup/trim.
type TrimRequest struct {
	MaxSize *int `json:"max_size,omitempty"`
}

// handleDedupTrim evicts the oldest dedup records down to max_size, or the
// configured bound when none is given.
func (s *Server) handleDedupTrim(c *fiber.Ctx) error {
	var req TrimRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	maxSize := s.config.Dedup.MaxSize()
	if req.MaxSize != nil {
		if *req.MaxSize < 0 {
			return fail(c, fiber.StatusBadRequest, "max_size must not be negative")
		}
		maxSize = *req.MaxSize
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	removed, err := s.config.Dedup.TrimCache(ctx, maxSize)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if removed == nil {
		removed = []string{}
	}
	return c.JSON(map[string]any{"removed": removed})
}

func (s *Server) handleDedupClear(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	n, err := s.config.Dedup.Clear(ctx)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(map[string]any{"removed": n})
}

func (s *Server) handleDedupStats(c *fiber.Ctx) error {
	ctx, cancel := s.requestContext(c)
	defer cancel()

	stats, err := s.config.Dedup.Stats(ctx)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}
