package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/smartread/pkg/eventstream"
)

// handleEvents returns the most recent pipeline events, newest last.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fail(c, fiber.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = parsed
	}

	events := []*eventstream.Event{}
	if s.config.Events != nil {
		if h := s.config.Events.History(limit); h != nil {
			events = h
		}
	}
	return c.JSON(map[string]any{
		"count":  len(events),
		"events": events,
	})
}
