// Package local provides an in-process memory.Store.
//
// With an embedder, memories are embedded on write and searched by cosine
// similarity. Without one, search falls back to word-overlap scoring, which
// is enough for tests and offline use.
package local

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/smartread/pkg/embeddings"
	"github.com/papercomputeco/smartread/pkg/memory"
)

// Config holds configuration for the local memory driver.
type Config struct {
	// Embedder is optional.
	Embedder embeddings.Embedder

	// Now overrides time.Now for created_at stamps.
	Now func() time.Time
}

type entry struct {
	memory    memory.Memory
	embedding []float32
}

// Driver implements memory.Store using in-process data structures.
type Driver struct {
	embedder embeddings.Embedder
	now      func() time.Time

	mu sync.RWMutex

	// entries maps user id -> memories in insertion order.
	entries map[string][]entry
}

// NewDriver creates a local in-memory memory driver.
func NewDriver(config Config) *Driver {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &Driver{
		embedder: config.Embedder,
		now:      now,
		entries:  make(map[string][]entry),
	}
}

func (d *Driver) Write(ctx context.Context, text, userID string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", memory.ErrEmptyText
	}

	var vec []float32
	if d.embedder != nil {
		var err error
		vec, err = d.embedder.Embed(ctx, text)
		if err != nil {
			return "", fmt.Errorf("embedding memory: %w", err)
		}
	}

	m := memory.Memory{
		ID:        uuid.NewString(),
		Text:      text,
		Metadata:  maps.Clone(metadata),
		CreatedAt: d.now().UTC(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[userID] = append(d.entries[userID], entry{memory: m, embedding: vec})

	return m.ID, nil
}

func (d *Driver) Search(ctx context.Context, query, userID string, limit int) ([]memory.Memory, error) {
	if limit <= 0 {
		return nil, nil
	}

	var qvec []float32
	if d.embedder != nil {
		var err error
		qvec, err = d.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embedding query: %w", err)
		}
	}

	d.mu.RLock()
	results := make([]memory.Memory, 0, len(d.entries[userID]))
	for _, e := range d.entries[userID] {
		m := copyMemory(e.memory)
		if qvec != nil {
			m.Score = memory.Cosine(qvec, e.embedding)
		} else {
			m.Score = memory.Jaccard(query, e.memory.Text)
		}
		results = append(results, m)
	}
	d.mu.RUnlock()

	slices.SortStableFunc(results, func(a, b memory.Memory) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (d *Driver) List(_ context.Context, userID string) ([]memory.Memory, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]memory.Memory, 0, len(d.entries[userID]))
	for _, e := range d.entries[userID] {
		out = append(out, copyMemory(e.memory))
	}
	return out, nil
}

func (d *Driver) DeleteAll(_ context.Context, userID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.entries[userID])
	delete(d.entries, userID)
	return n, nil
}

// Close closes the embedder, if any.
func (d *Driver) Close() error {
	if d.embedder != nil {
		return d.embedder.Close()
	}
	return nil
}

func copyMemory(m memory.Memory) memory.Memory {
	m.Metadata = maps.Clone(m.Metadata)
	return m
}

var _ memory.Store = (*Driver)(nil)
