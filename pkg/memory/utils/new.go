// Package memoryutils builds a memory.Store from configuration.
package memoryutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/smartread/pkg/embeddings"
	"github.com/papercomputeco/smartread/pkg/memory"
	"github.com/papercomputeco/smartread/pkg/memory/local"
	"github.com/papercomputeco/smartread/pkg/memory/qdrant"
	"github.com/papercomputeco/smartread/pkg/memory/sqlitevec"
)

type NewStoreOpts struct {
	Provider   string
	Embedder   embeddings.Embedder
	Dimensions uint

	QdrantHost   string
	QdrantPort   int
	QdrantAPIKey string
	Collection   string

	SQLitePath string

	Logger *slog.Logger
}

// NewStore returns the memory store for o.Provider.
func NewStore(ctx context.Context, o *NewStoreOpts) (memory.Store, error) {
	switch o.Provider {
	case "", "local":
		return local.NewDriver(local.Config{Embedder: o.Embedder}), nil
	case "qdrant":
		return qdrant.NewStore(ctx, qdrant.Config{
			Host:       o.QdrantHost,
			Port:       o.QdrantPort,
			APIKey:     o.QdrantAPIKey,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
			Embedder:   o.Embedder,
			Logger:     o.Logger,
		})
	case "sqlitevec":
		return sqlitevec.NewStore(sqlitevec.Config{
			DBPath:     o.SQLitePath,
			Dimensions: o.Dimensions,
			Embedder:   o.Embedder,
			Logger:     o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported memory provider: %s", o.Provider)
	}
}
