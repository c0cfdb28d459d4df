package testutils

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator returns scripted responses. Rules are checked in order and
// the first rule whose substring occurs in the prompt answers; otherwise
// Default (or DefaultErr) is returned.
type MockGenerator struct {
	mu sync.Mutex

	rules      []mockRule
	Default    string
	DefaultErr error

	prompts []string
}

type mockRule struct {
	contains string
	response string
	err      error
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// On answers prompts containing substr with response.
func (m *MockGenerator) On(substr, response string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{contains: substr, response: response})
	return m
}

// FailOn answers prompts containing substr with err.
func (m *MockGenerator) FailOn(substr string, err error) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{contains: substr, err: err})
	return m
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	for _, r := range m.rules {
		if strings.Contains(prompt, r.contains) {
			return r.response, r.err
		}
	}
	return m.Default, m.DefaultErr
}

// Calls returns the number of Generate calls.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns every prompt received, in order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}
