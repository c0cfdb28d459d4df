// Package ingest turns a page into memory snippets and stores them, guarded by
// the deduplication cache.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/smartread/pkg/dedup"
	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/llm"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
)

const (
	DefaultUserID      = "chrome_extension_user"
	DefaultConcurrency = 5
)

// Options controls a single ingestion.
type Options struct {
	// Force skips the duplicate check.
	Force bool

	// Metadata is merged into every snippet's metadata.
	Metadata map[string]any
}

// Result reports an ingestion. Snippets lists the stored snippets in
// generation order.
type Result struct {
	Success       bool     `json:"success"`
	Processed     bool     `json:"processed"`
	Duplicate     bool     `json:"duplicate"`
	SnippetsCount int      `json:"snippets_count"`
	FailedWrites  int      `json:"failed_writes"`
	Snippets      []string `json:"snippets"`
	Error         string   `json:"error,omitempty"`
}

type Ingester struct {
	cache       *dedup.Cache
	gen         llm.Generator
	store       memory.Writer
	userID      string
	concurrency int
	notifier    eventstream.Notifier
	now         func() time.Time
	logger      *slog.Logger
}

type Option func(*Ingester)

func WithUserID(id string) Option {
	return func(i *Ingester) {
		if id != "" {
			i.userID = id
		}
	}
}

func WithConcurrency(n int) Option {
	return func(i *Ingester) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

func WithNotifier(n eventstream.Notifier) Option {
	return func(i *Ingester) {
		if n != nil {
			i.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Ingester) {
		if now != nil {
			i.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(i *Ingester) {
		if l != nil {
			i.logger = l
		}
	}
}

func New(cache *dedup.Cache, gen llm.Generator, store memory.Writer, opts ...Option) *Ingester {
	i := &Ingester{
		cache:       cache,
		gen:         gen,
		store:       store,
		userID:      DefaultUserID,
		concurrency: DefaultConcurrency,
		notifier:    eventstream.Nop(),
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// AddPageToMemory generates snippets for content and stores them. Only a
// deduplication storage failure is returned as an error; every other
// failure is reported through the result.
func (i *Ingester) AddPageToMemory(ctx context.Context, content, sourceID string, opts Options) (*Result, error) {
	res := &Result{Snippets: []string{}}

	if _, err := fingerprint.Fingerprint(content, sourceID); err != nil {
		res.Error = err.Error()
		return res, nil
	}

	if !opts.Force {
		rec, err := i.cache.CheckDuplicate(ctx, content, sourceID)
		if err != nil {
			res.Error = err.Error()
			return res, fmt.Errorf("checking duplicate: %w", err)
		}
		if rec != nil {
			res.Success = true
			res.Duplicate = true
			i.notifier.Notify(ctx, eventstream.KindMemoryAddDuplicate, map[string]any{
				"source_id":    sourceID,
				"fingerprint":  rec.Fingerprint,
				"processed_at": rec.ProcessedAt,
			})
			return res, nil
		}
	}

	snippets, err := i.generateSnippets(ctx, content)
	if err != nil {
		res.Error = err.Error()
		i.failed(ctx, sourceID, res)
		return res, nil
	}

	stored, failed := i.writeSnippets(ctx, snippets, sourceID, opts.Metadata)
	res.Snippets = stored
	res.SnippetsCount = len(stored)
	res.FailedWrites = failed

	if len(stored) == 0 {
		res.Error = ErrAllWritesFailed.Error()
		i.failed(ctx, sourceID, res)
		return res, nil
	}

	if err := i.cache.CacheContent(ctx, content, sourceID, map[string]any{
		"snippets_count": len(stored),
	}); err != nil {
		res.Error = err.Error()
		return res, fmt.Errorf("recording content: %w", err)
	}

	res.Success = true
	res.Processed = true
	i.notifier.Notify(ctx, eventstream.KindMemoryAddSuccess, map[string]any{
		"source_id":      sourceID,
		"snippets_count": res.SnippetsCount,
		"failed_writes":  res.FailedWrites,
	})
	i.logger.Info("page added to memory",
		"source_id", sourceID,
		"snippets", res.SnippetsCount,
		"failed_writes", res.FailedWrites,
	)
	return res, nil
}

func (i *Ingester) generateSnippets(ctx context.Context, content string) ([]string, error) {
	resp, err := i.gen.Generate(ctx, Prompt(content))
	if err != nil {
		return nil, fmt.Errorf("generating snippets: %w", err)
	}
	snippets, err := ParseSnippets(resp)
	if err != nil {
		return nil, fmt.Errorf("parsing snippets: %w", err)
	}
	if len(snippets) == 0 {
		return nil, ErrNoSnippets
	}
	return snippets, nil
}

// writeSnippets stores every snippet concurrently. A failed write is logged
// and counted; it never cancels the others.
func (i *Ingester) writeSnippets(ctx context.Context, snippets []string, sourceID string, extra map[string]any) ([]string, int) {
	ingestedAt := i.now().UTC().Format(time.RFC3339Nano)
	errs := make([]error, len(snippets))

	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for idx, snippet := range snippets {
		meta := map[string]any{
			"source_url":    sourceID,
			"snippet_index": idx,
			"ingested_at":   ingestedAt,
		}
		maps.Copy(meta, extra)

		g.Go(func() error {
			if _, err := i.store.Write(ctx, snippet, i.userID, meta); err != nil {
				i.logger.Warn("memory write failed", "snippet_index", idx, "error", err)
				errs[idx] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	stored := make([]string, 0, len(snippets))
	failed := 0
	for idx, err := range errs {
		if err != nil {
			failed++
			continue
		}
		stored = append(stored, snippets[idx])
	}
	return stored, failed
}

func (i *Ingester) failed(ctx context.Context, sourceID string, res *Result) {
	i.notifier.Notify(ctx, eventstream.KindMemoryAddFailed, map[string]any{
		"source_id":     sourceID,
		"error":         res.Error,
		"failed_writes": res.FailedWrites,
	})
}
