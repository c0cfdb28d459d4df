// Package rephrase rewrites page content around the reader's relevant
// memories.
package rephrase

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/llm"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
)

// Retriever selects the memories relevant to content.
type Retriever interface {
	SearchRelevantMemories(ctx context.Context, content string, maxMemories int, threshold float64) []memory.Memory
}

type Rephraser struct {
	retriever Retriever
	gen       llm.Generator
	notifier  eventstream.Notifier
	logger    *slog.Logger
}

type Option func(*Rephraser)

func WithNotifier(n eventstream.Notifier) Option {
	return func(r *Rephraser) {
		if n != nil {
			r.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Rephraser) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(retriever Retriever, gen llm.Generator, opts ...Option) *Rephraser {
	r := &Rephraser{
		retriever: retriever,
		gen:       gen,
		notifier:  eventstream.Nop(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rephrase rewrites content using the reader's relevant memories. All
// failures are reported through the result.
func (r *Rephraser) Rephrase(ctx context.Context, content string, opts Options) *Result {
	res := &Result{
		OriginalContent:  content,
		RelevantMemories: []memory.Memory{},
	}

	if strings.TrimSpace(content) == "" || !utf8.ValidString(content) {
		res.Error = fingerprint.ErrInvalidInput.Error()
		return res
	}

	memories := r.retriever.SearchRelevantMemories(ctx, content, opts.MaxMemories, opts.RelevanceThreshold)
	if len(memories) == 0 {
		res.Error = ErrNoRelevantMemories.Error()
		r.notifier.Notify(ctx, eventstream.KindRephraseFailed, map[string]any{
			"error":          res.Error,
			"content_length": utf8.RuneCountInString(content),
		})
		return res
	}

	res.RelevantMemories = memories
	res.RelevantMemoriesCount = len(memories)

	out, err := r.gen.Generate(ctx, Prompt(content, memories))
	if err == nil && strings.TrimSpace(out) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		r.logger.Warn("rephrase generation failed", "error", err)
		res.RephrasedContent = content
		res.Error = err.Error()
		r.notifier.Notify(ctx, eventstream.KindRephraseFailed, map[string]any{
			"error":          res.Error,
			"memories_count": len(memories),
		})
		return res
	}

	res.Success = true
	res.RephrasedContent = out
	r.notifier.Notify(ctx, eventstream.KindRephraseSuccess, map[string]any{
		"memories_count": len(memories),
		"content_length": utf8.RuneCountInString(content),
	})
	r.logger.Debug("rephrased content", "memories", len(memories))
	return res
}
