package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/smartread/pkg/ingest"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/rephrase"
)

const defaultSearchLimit = 10

var (
	memorySearchToolName    = "memory_search"
	memorySearchDescription = "Search the reader's stored memories. Returns the snippets most relevant to the query text, highest score first, with the page each one came from."

	pageAddToolName    = "page_add"
	pageAddDescription = "Add a web page to the reader's memory. The page is split into short snippets and stored; pages that were already added are skipped unless force is set."

	pageRephraseToolName    = "page_rephrase"
	pageRephraseDescription = "Rewrite page content around the reader's relevant memories: a recap with references followed by the new material in the author's voice."
)

// MemorySearchInput represents the input arguments for the memory_search tool.
type MemorySearchInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of results to return (default: 10)"`
}

// MemoryResult is a memory as reported by the tools.
type MemoryResult struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Score     float64        `json:"score"`
	SourceURL string         `json:"source_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// MemorySearchOutput represents the output of the memory_search tool.
type MemorySearchOutput struct {
	Query    string         `json:"query"`
	Memories []MemoryResult `json:"memories"`
	Count    int            `json:"count"`
}

// PageRephraseOutput represents the output of the page_rephrase tool.
type PageRephraseOutput struct {
	Success               bool           `json:"success"`
	RephrasedContent      string         `json:"rephrased_content"`
	RelevantMemoriesCount int            `json:"relevant_memories_count"`
	RelevantMemories      []MemoryResult `json:"relevant_memories"`
	Error                 string         `json:"error,omitempty"`
}

func toMemoryResults(ms []memory.Memory) []MemoryResult {
	out := make([]MemoryResult, 0, len(ms))
	for _, m := range ms {
		out = append(out, MemoryResult{
			ID:        m.ID,
			Text:      m.Text,
			Score:     m.Score,
			SourceURL: memory.SourceURL(m),
			Metadata:  m.Metadata,
		})
	}
	return out
}

// PageAddInput represents the input arguments for the page_add tool.
type PageAddInput struct {
	Content   string `json:"content" jsonschema:"the page text"`
	SourceURL string `json:"source_url" jsonschema:"the page URL"`
	Force     bool   `json:"force,omitempty" jsonschema:"add the page even if it was added before"`
}

// PageRephraseInput represents the input arguments for the page_rephrase tool.
type PageRephraseInput struct {
	Content            string   `json:"content" jsonschema:"the page text to rewrite"`
	MaxMemories        *int     `json:"max_memories,omitempty" jsonschema:"maximum number of memories to use"`
	RelevanceThreshold *float64 `json:"relevance_threshold,omitempty" jsonschema:"minimum relevance score a memory must exceed"`
}

func (s *Server) handleMemorySearch(ctx context.Context, _ *mcp.CallToolRequest, input MemorySearchInput) (*mcp.CallToolResult, MemorySearchOutput, error) {
	if input.Query == "" {
		return toolError("query is required"), MemorySearchOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	s.config.Logger.Debug("MCP memory search request",
		"query", input.Query,
		"limit", limit,
	)

	found, err := s.config.Memories.Search(ctx, input.Query, s.config.UserID, limit)
	if err != nil {
		s.config.Logger.Error("memory search failed", "error", err)
		return toolError("Memory search failed: %v", err), MemorySearchOutput{}, nil
	}
	output := MemorySearchOutput{
		Query:    input.Query,
		Memories: toMemoryResults(found),
		Count:    len(found),
	}
	return toolResult(output), output, nil
}

func (s *Server) handlePageAdd(ctx context.Context, _ *mcp.CallToolRequest, input PageAddInput) (*mcp.CallToolResult, ingest.Result, error) {
	res, err := s.config.Ingester.AddPageToMemory(ctx, input.Content, input.SourceURL, ingest.Options{
		Force: input.Force,
	})
	if err != nil {
		s.config.Logger.Error("page add failed", "source_url", input.SourceURL, "error", err)
		return toolError("Adding page failed: %v", err), ingest.Result{}, nil
	}

	out := toolResult(res)
	if !res.Success {
		out.IsError = true
	}
	return out, *res, nil
}

func (s *Server) handlePageRephrase(ctx context.Context, _ *mcp.CallToolRequest, input PageRephraseInput) (*mcp.CallToolResult, PageRephraseOutput, error) {
	opts := s.config.RephraseDefaults().Merge(rephrase.Overrides{
		MaxMemories:        input.MaxMemories,
		RelevanceThreshold: input.RelevanceThreshold,
	})

	res := s.config.Rephraser.Rephrase(ctx, input.Content, opts)
	output := PageRephraseOutput{
		Success:               res.Success,
		RephrasedContent:      res.RephrasedContent,
		RelevantMemoriesCount: res.RelevantMemoriesCount,
		RelevantMemories:      toMemoryResults(res.RelevantMemories),
		Error:                 res.Error,
	}

	out := toolResult(output)
	if !res.Success {
		out.IsError = true
	}
	return out, output, nil
}
