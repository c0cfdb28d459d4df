package dedup

import "time"

const (
	contentPrefix = "dedup_cnt_"
	sourcePrefix  = "dedup_url_"
)

// Record marks a piece of content as processed. Records are written once per
// CacheContent call and never mutated.
type Record struct {
	Fingerprint   string         `json:"fingerprint"`
	SourceID      string         `json:"source_id"`
	ProcessedAt   time.Time      `json:"processed_at"`
	ContentLength int            `json:"content_length"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Records int        `json:"records"`
	Oldest  *time.Time `json:"oldest,omitempty"`
	Newest  *time.Time `json:"newest,omitempty"`
}

func contentKey(fp string) string {
	return contentPrefix + fp
}

func sourceKey(normalized string) string {
	return sourcePrefix + normalized
}
