// Package session owns the per-session page result caches.
package session

import (
	"slices"
	"strings"
	"sync"

	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/lru"
	"github.com/papercomputeco/smartread/pkg/rephrase"
)

// DefaultID is used when a client does not name its session.
const DefaultID = "default"

// PageCache holds rephrase results keyed by page.
type PageCache = lru.Cache[string, *rephrase.Result]

// Registry maps session ids to their page caches. A cache lives from its
// first use until End.
type Registry struct {
	mu       sync.Mutex
	capacity int
	sessions map[string]*PageCache
}

// NewRegistry creates a registry whose caches hold capacity pages each.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		sessions: make(map[string]*PageCache),
	}
}

// Cache returns the page cache for id, creating it on first use.
func (r *Registry) Cache(id string) *PageCache {
	if id == "" {
		id = DefaultID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.sessions[id]
	if !ok {
		c = lru.New[string, *rephrase.Result](r.capacity)
		r.sessions[strings.Clone(id)] = c
	}
	return c
}

// End clears and forgets the cache for id. It reports whether the session
// existed.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		c.Clear()
	}
	return ok
}

// IDs returns the live session ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// PageKey identifies a page within a session: the normalized source URL
// when there is one, otherwise the content fingerprint.
func PageKey(sourceURL, content string) (string, error) {
	if norm := fingerprint.NormalizeSource(sourceURL); norm != "" {
		return norm, nil
	}
	return fingerprint.Fingerprint(content, "-")
}
