// Package kv defines the key/value substrate behind the deduplication cache.
package kv

import (
	"context"
)

// Store is a durable byte-oriented key/value store. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set creates or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Scan returns every entry whose key starts with prefix.
	Scan(ctx context.Context, prefix string) (map[string][]byte, error)

	// DeleteMany removes the given keys. Missing keys are ignored.
	DeleteMany(ctx context.Context, keys []string) error

	// Close releases the store's resources.
	Close() error
}
