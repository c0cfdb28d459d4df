// Package retrieval finds the stored memories most relevant to a piece of
// content: one search per extracted topic, then merge, dedupe, threshold,
// sort and truncate.
package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
)

const (
	// SearchLimit is the number of candidates requested per topic.
	SearchLimit = 50

	// DefaultUserID scopes searches when no user id is configured.
	DefaultUserID = "chrome_extension_user"

	// DefaultConcurrency bounds in-flight topic searches.
	DefaultConcurrency = 5
)

// TopicExtractor derives search topics from content.
type TopicExtractor interface {
	Extract(ctx context.Context, content string) []string
}

type Retriever struct {
	extractor   TopicExtractor
	store       memory.Searcher
	userID      string
	concurrency int
	logger      *slog.Logger
}

type Option func(*Retriever)

func WithUserID(id string) Option {
	return func(r *Retriever) {
		if id != "" {
			r.userID = id
		}
	}
}

func WithConcurrency(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Retriever) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(extractor TopicExtractor, store memory.Searcher, opts ...Option) *Retriever {
	r := &Retriever{
		extractor:   extractor,
		store:       store,
		userID:      DefaultUserID,
		concurrency: DefaultConcurrency,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UserID returns the user id searches are scoped to.
func (r *Retriever) UserID() string {
	return r.userID
}

// SearchRelevantMemories returns at most maxMemories memories scoring
// strictly above threshold, highest first. Failed topic searches are
// skipped; the result is empty when no topics are found or every search
// fails.
func (r *Retriever) SearchRelevantMemories(ctx context.Context, content string, maxMemories int, threshold float64) []memory.Memory {
	topics := r.extractor.Extract(ctx, content)
	if len(topics) == 0 {
		r.logger.Debug("no topics extracted")
		return []memory.Memory{}
	}

	// One slot per topic keeps the merge order equal to topic order no
	// matter which search finishes first.
	slots := make([][]memory.Memory, len(topics))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, topic := range topics {
		g.Go(func() error {
			found, err := r.store.Search(ctx, topic, r.userID, SearchLimit)
			if err != nil {
				r.logger.Warn("topic search failed", "topic", topic, "error", err)
				return nil
			}
			slots[i] = found
			return nil
		})
	}
	_ = g.Wait()

	selected := SelectRelevant(slots, maxMemories, threshold)
	r.logger.Debug("selected relevant memories",
		"topics", topics,
		"selected", len(selected),
	)
	return selected
}

// SelectRelevant merges per-topic candidates in order, keeps the first
// occurrence of each id, drops scores not strictly above threshold, sorts by
// score descending (stable) and truncates to maxMemories.
func SelectRelevant(candidates [][]memory.Memory, maxMemories int, threshold float64) []memory.Memory {
	if maxMemories <= 0 {
		return []memory.Memory{}
	}

	seen := make(map[string]struct{})
	merged := []memory.Memory{}
	for _, slot := range candidates {
		for _, m := range slot {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			if m.Score > threshold {
				merged = append(merged, m)
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > maxMemories {
		merged = merged[:maxMemories]
	}
	return merged
}
