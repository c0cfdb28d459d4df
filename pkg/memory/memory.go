// Package memory defines the memory store smartread retrieves from and
// ingests into.
//
// A memory is a short piece of text with metadata, scoped to a user id.
// Search scores are query-dependent and higher means more relevant; the
// retrieval layer applies thresholds, the stores only rank.
//
// Drivers are selected by configuration:
//
//	[memory]
//	provider = "local"   # or "qdrant", "sqlitevec"
package memory

import (
	"context"
	"time"
)

// Memory is a stored snippet as returned by a search or listing.
type Memory struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Score     float64        `json:"score"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Searcher finds memories relevant to a query.
type Searcher interface {
	// Search returns at most limit memories for userID ordered by
	// descending score.
	Search(ctx context.Context, query, userID string, limit int) ([]Memory, error)
}

// Writer stores new memories.
type Writer interface {
	// Write stores text for userID and returns the new memory's id.
	Write(ctx context.Context, text, userID string, metadata map[string]any) (string, error)
}

// Store is a full memory backend.
type Store interface {
	Searcher
	Writer

	// List returns every memory for userID, oldest first.
	List(ctx context.Context, userID string) ([]Memory, error)

	// DeleteAll removes every memory for userID and returns how many were
	// removed.
	DeleteAll(ctx context.Context, userID string) (int, error)

	Close() error
}

// SourceURL returns the page a memory came from, read from the "url" or
// "source_url" metadata keys.
func SourceURL(m Memory) string {
	for _, k := range []string{"url", "source_url"} {
		if s, ok := m.Metadata[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Summary aggregates a user's memories by source page.
type Summary struct {
	Total    int            `json:"total"`
	BySource map[string]int `json:"by_source"`
}

// Summarize counts memories per source. Memories without a source are
// counted under "unknown".
func Summarize(memories []Memory) Summary {
	s := Summary{Total: len(memories), BySource: make(map[string]int)}
	for _, m := range memories {
		src := SourceURL(m)
		if src == "" {
			src = "unknown"
		}
		s.BySource[src]++
	}
	return s
}
