package credentials

// Credentials is the on-disk shape of credentials.toml. Keys are the
// provider names accepted by `smartread auth`.
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential is one provider's stored secret. For qdrant it is the
// cluster API key; for the LLM and embedding providers it is the API key.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}

// providerEnvVars maps each provider to the environment variable consulted
// when no key is stored.
var providerEnvVars = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"qdrant":    "QDRANT_API_KEY",
}
