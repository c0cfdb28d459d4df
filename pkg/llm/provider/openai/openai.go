// Package openai implements llm.Generator with the OpenAI chat completions
// API. Any OpenAI-compatible endpoint works through BaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/smartread/pkg/llm"
)

const DefaultModel = goopenai.GPT4oMini

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Generator struct {
	client *goopenai.Client
	model  string
}

func New(c Config) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai generator requires an API key")
	}

	config := goopenai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		config.BaseURL = c.BaseURL
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		client: goopenai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

var _ llm.Generator = (*Generator)(nil)
