package ingest

import "errors"

var (
	// ErrNoSnippets is reported when the model produced no usable snippets.
	ErrNoSnippets = errors.New("no memory snippets could be generated from content")

	// ErrAllWritesFailed is reported when no snippet could be stored.
	ErrAllWritesFailed = errors.New("every memory write failed")
)
