// Package ollama implements llm.Generator against a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/papercomputeco/smartread/pkg/llm"
)

const (
	DefaultModel   = "llama3.2"
	DefaultBaseURL = "http://localhost:11434"
)

type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

type Generator struct {
	client *api.Client
	model  string
}

func New(c Config) (*Generator, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	uri, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", baseURL, err)
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Generator{
		client: api.NewClient(uri, httpClient),
		model:  model,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream: new(bool), // false
	}

	var b strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	if b.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return b.String(), nil
}

var _ llm.Generator = (*Generator)(nil)
