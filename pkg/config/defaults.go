package config

const (
	defaultMaxMemories        = 6
	defaultRelevanceThreshold = 0.3

	defaultMaxCacheSize = 1000

	defaultLLMProvider = "gemini"
	defaultLLMModel    = "gemini-2.5-flash"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultMemoryProvider = "local"
	defaultUserID         = "chrome_extension_user"
	defaultQdrantHost     = "localhost"
	defaultQdrantPort     = 6334
	defaultCollection     = "smart_read_memories"

	defaultStorageDriver = "sqlite"

	defaultListen           = ":8787"
	defaultRequestTimeout   = "60s"
	defaultSessionCacheSize = 5

	defaultEventsBuffer  = 256
	defaultEventsWorkers = 2
	defaultEventsHistory = 100
	defaultKafkaTopic    = "smartread.events"

	defaultLogLevel = "info"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Rephrase: RephraseConfig{
			MaxMemories:        defaultMaxMemories,
			RelevanceThreshold: defaultRelevanceThreshold,
		},
		Dedup: DedupConfig{
			MaxCacheSize: defaultMaxCacheSize,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Model:    defaultLLMModel,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Memory: MemoryConfig{
			Provider:   defaultMemoryProvider,
			UserID:     defaultUserID,
			QdrantHost: defaultQdrantHost,
			QdrantPort: defaultQdrantPort,
			Collection: defaultCollection,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Server: ServerConfig{
			Listen:           defaultListen,
			RequestTimeout:   defaultRequestTimeout,
			SessionCacheSize: defaultSessionCacheSize,
		},
		Events: EventsConfig{
			Buffer:     defaultEventsBuffer,
			Workers:    defaultEventsWorkers,
			History:    defaultEventsHistory,
			KafkaTopic: defaultKafkaTopic,
		},
		Log: LogConfig{
			Level: defaultLogLevel,
		},
	}
}
