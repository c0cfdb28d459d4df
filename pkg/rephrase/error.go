package rephrase

import "errors"

// ErrNoRelevantMemories is reported when retrieval finds nothing above the
// threshold.
var ErrNoRelevantMemories = errors.New("no relevant memories found")
