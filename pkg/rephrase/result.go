package rephrase

import "github.com/papercomputeco/smartread/pkg/memory"

// Result is the outcome of a rewrite. On failure Error is set and Success is
// false; the caller never receives a Go error.
type Result struct {
	Success               bool            `json:"success"`
	RephrasedContent      string          `json:"rephrased_content"`
	OriginalContent       string          `json:"original_content"`
	RelevantMemoriesCount int             `json:"relevant_memories_count"`
	RelevantMemories      []memory.Memory `json:"relevant_memories"`
	Error                 string          `json:"error,omitempty"`
}
