// Package topics derives short search topics from page content.
package topics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/smartread/pkg/llm"
	"github.com/papercomputeco/smartread/pkg/logger"
)

// MaxTopics caps the number of topics Extract returns.
const MaxTopics = 5

// Extractor asks a generator for 3-5 canonical topics. It never fails: a
// generator error or unparseable answer yields no topics.
type Extractor struct {
	gen    llm.Generator
	logger *slog.Logger
}

type Option func(*Extractor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(gen llm.Generator, opts ...Option) *Extractor {
	e := &Extractor{gen: gen, logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns between 0 and MaxTopics topics for content.
func (e *Extractor) Extract(ctx context.Context, content string) []string {
	resp, err := e.gen.Generate(ctx, Prompt(content))
	if err != nil {
		e.logger.Debug("topic generation failed", "error", err)
		return []string{}
	}

	topics, err := Parse(resp)
	if err != nil {
		e.logger.Debug("topic response unparseable", "error", err)
		return []string{}
	}
	return topics
}

// Parse extracts the topic array from a model response. Entries are trimmed,
// blanks and case-insensitive duplicates dropped, and the list capped at
// MaxTopics.
func Parse(response string) ([]string, error) {
	raw, err := llm.ParseStringArray(response)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, min(len(raw), MaxTopics))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTopics {
			break
		}
	}
	return out, nil
}

// Prompt builds the topic-extraction prompt for content.
func Prompt(content string) string {
	return fmt.Sprintf(`You extract key topics from content for semantic memory search.

Read the content and return 3-5 topics that would find related memories.

Rules:
- Each topic is a Title-Case noun phrase of 1-4 words.
- Prefer the most specific phrase: "Time Blocking" beats "Productivity" when the content is about time blocking.
- No near-duplicates: "Habit Formation" and "Forming Habits" count as one topic.
- Cover main subjects, specific methods or concepts, and related skills.

Content:
%s

Return only a JSON array of strings with no other text and no code fence, for example:
["Deep Work", "Time Blocking", "Focus Techniques"]`, content)
}
