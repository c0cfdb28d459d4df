package testutils

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/papercomputeco/smartread/pkg/memory"
)

// ErrMockWrite is returned by MockMemoryStore.Write for failing writes.
var ErrMockWrite = errors.New("mock memory write failure")

// MockMemoryStore is a test memory store with scripted search results.
type MockMemoryStore struct {
	mu sync.Mutex

	// Results maps a query to the memories Search returns for it.
	Results map[string][]memory.Memory

	// FailQueries lists queries for which Search returns an error.
	FailQueries map[string]bool

	// FailWrites lists snippet texts for which Write returns ErrMockWrite.
	FailWrites map[string]bool

	// FailAllWrites makes every Write fail.
	FailAllWrites bool

	// Written accumulates successful writes.
	Written []memory.Memory

	searches []string
	userIDs  []string
	limits   []int
	nextID   int
}

// NewMockMemoryStore creates a new mock memory store.
func NewMockMemoryStore() *MockMemoryStore {
	return &MockMemoryStore{
		Results:     make(map[string][]memory.Memory),
		FailQueries: make(map[string]bool),
		FailWrites:  make(map[string]bool),
	}
}

func (m *MockMemoryStore) Search(_ context.Context, query, userID string, limit int) ([]memory.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.searches = append(m.searches, query)
	m.userIDs = append(m.userIDs, userID)
	m.limits = append(m.limits, limit)

	if m.FailQueries[query] {
		return nil, fmt.Errorf("mock search failure for: %s", query)
	}

	res := m.Results[query]
	if len(res) > limit {
		res = res[:limit]
	}
	out := make([]memory.Memory, len(res))
	copy(out, res)
	return out, nil
}

func (m *MockMemoryStore) Write(_ context.Context, text, userID string, metadata map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAllWrites || m.FailWrites[text] {
		return "", ErrMockWrite
	}

	m.nextID++
	id := fmt.Sprintf("mem-%d", m.nextID)
	meta := maps.Clone(metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["user_id"] = userID
	m.Written = append(m.Written, memory.Memory{
		ID:        id,
		Text:      text,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	})
	return id, nil
}

func (m *MockMemoryStore) List(_ context.Context, _ string) ([]memory.Memory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]memory.Memory, len(m.Written))
	copy(out, m.Written)
	return out, nil
}

func (m *MockMemoryStore) DeleteAll(_ context.Context, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.Written)
	m.Written = nil
	return n, nil
}

func (m *MockMemoryStore) Close() error {
	return nil
}

// Searches returns the queries passed to Search, in call order.
func (m *MockMemoryStore) Searches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.searches))
	copy(out, m.searches)
	return out
}

// SearchUserIDs returns the user ids passed to Search, in call order.
func (m *MockMemoryStore) SearchUserIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.userIDs))
	copy(out, m.userIDs)
	return out
}

// SearchLimits returns the limits passed to Search, in call order.
func (m *MockMemoryStore) SearchLimits() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.limits))
	copy(out, m.limits)
	return out
}

// WrittenTexts returns the text of each successful write.
func (m *MockMemoryStore) WrittenTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Written))
	for _, w := range m.Written {
		out = append(out, w.Text)
	}
	return out
}

var _ memory.Store = (*MockMemoryStore)(nil)
