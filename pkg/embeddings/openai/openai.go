// Package openai implements embeddings.Embedder with the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/smartread/pkg/embeddings"
)

// DefaultEmbeddingModel is text-embedding-3-small.
const DefaultEmbeddingModel = string(goopenai.SmallEmbedding3)

type EmbedderConfig struct {
	APIKey string

	// BaseURL points at an OpenAI-compatible endpoint. Empty uses OpenAI.
	BaseURL string

	Model string

	// Dimensions requests shortened vectors from models that support it.
	// Zero keeps the model default.
	Dimensions int
}

type Embedder struct {
	client     *goopenai.Client
	model      goopenai.EmbeddingModel
	dimensions int
}

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder requires an API key")
	}

	c := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		client:     goopenai.NewClientWithConfig(c),
		model:      goopenai.EmbeddingModel(model),
		dimensions: cfg.Dimensions,
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      []string{text},
		Model:      e.model,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", embeddings.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", embeddings.ErrEmbedding)
	}
	return resp.Data[0].Embedding, nil
}

func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
