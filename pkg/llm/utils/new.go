// Package llmutils builds an llm.Generator from configuration.
package llmutils

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/papercomputeco/smartread/pkg/credentials"
	"github.com/papercomputeco/smartread/pkg/llm"
	"github.com/papercomputeco/smartread/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/smartread/pkg/llm/provider/gemini"
	"github.com/papercomputeco/smartread/pkg/llm/provider/ollama"
	"github.com/papercomputeco/smartread/pkg/llm/provider/openai"
)

type NewGeneratorOpts struct {
	Provider string
	Model    string
	BaseURL  string

	// APIKey wins over stored credentials and environment variables.
	APIKey      string
	Credentials *credentials.Manager
}

// Providers lists the supported generator providers.
func Providers() []string {
	return []string{"gemini", "openai", "anthropic", "ollama"}
}

// NewGenerator returns the generator for o.Provider. The returned closer
// releases provider clients and is never nil.
func NewGenerator(ctx context.Context, o *NewGeneratorOpts) (llm.Generator, io.Closer, error) {
	provider := strings.ToLower(o.Provider)
	if !slices.Contains(Providers(), provider) {
		return nil, nopCloser{}, fmt.Errorf("unsupported llm provider: %s", o.Provider)
	}

	key := ""
	if provider != "ollama" {
		var err error
		key, err = o.Credentials.Resolve(provider, o.APIKey)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("resolving %s credentials: %w", provider, err)
		}
		if key == "" {
			return nil, nopCloser{}, fmt.Errorf("no API key for %s: set %s or run 'smartread auth %s'", provider, credentials.EnvVarForProvider(provider), provider)
		}
	}

	var (
		g      llm.Generator
		closer io.Closer = nopCloser{}
		err    error
	)
	switch provider {
	case "gemini":
		var gg *gemini.Generator
		gg, err = gemini.New(ctx, gemini.Config{APIKey: key, Model: o.Model, Endpoint: o.BaseURL})
		if err == nil {
			g, closer = gg, gg
		}
	case "openai":
		g, err = asGenerator(openai.New(openai.Config{APIKey: key, BaseURL: o.BaseURL, Model: o.Model}))
	case "anthropic":
		g, err = asGenerator(anthropic.New(anthropic.Config{APIKey: key, BaseURL: o.BaseURL, Model: o.Model}))
	case "ollama":
		g, err = asGenerator(ollama.New(ollama.Config{BaseURL: o.BaseURL, Model: o.Model}))
	default:
		err = fmt.Errorf("unsupported llm provider: %s", o.Provider)
	}
	if err != nil {
		return nil, nopCloser{}, err
	}
	return g, closer, nil
}

// asGenerator keeps a typed nil out of the interface on error.
func asGenerator[G llm.Generator](g G, err error) (llm.Generator, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
