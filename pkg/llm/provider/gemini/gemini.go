// Package gemini implements llm.Generator with Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/papercomputeco/smartread/pkg/llm"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string

	// Endpoint overrides the API endpoint.
	Endpoint string
}

// Generator sends each prompt as a single-turn GenerateContent call.
type Generator struct {
	client   *genai.Client
	model    string
	generate func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
}

// New creates a Gemini client. The caller owns Close.
func New(ctx context.Context, c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("gemini generator requires an API key")
	}

	opts := []option.ClientOption{option.WithAPIKey(c.APIKey)}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	g := &Generator{client: client, model: model}
	g.generate = func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
		return client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	}
	return g, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", llm.ErrEmptyResponse
	}
	return b.String(), nil
}

var _ llm.Generator = (*Generator)(nil)
