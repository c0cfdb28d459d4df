package rephrase

const (
	DefaultMaxMemories        = 6
	DefaultRelevanceThreshold = 0.3

	// MaxOutputWords caps the soft word limit given to the model.
	MaxOutputWords = 900
)

// Options controls how many memories are pulled into a rewrite and how
// relevant they must be.
type Options struct {
	MaxMemories        int     `json:"max_memories"`
	RelevanceThreshold float64 `json:"relevance_threshold"`
}

// Overrides holds per-request option values. Nil fields keep the base value.
type Overrides struct {
	MaxMemories        *int     `json:"max_memories,omitempty"`
	RelevanceThreshold *float64 `json:"relevance_threshold,omitempty"`
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		MaxMemories:        DefaultMaxMemories,
		RelevanceThreshold: DefaultRelevanceThreshold,
	}
}

// Merge returns o with the set fields of ov applied. Neither input is
// modified.
func (o Options) Merge(ov Overrides) Options {
	out := o
	if ov.MaxMemories != nil {
		out.MaxMemories = *ov.MaxMemories
	}
	if ov.RelevanceThreshold != nil {
		out.RelevanceThreshold = *ov.RelevanceThreshold
	}
	return out
}
