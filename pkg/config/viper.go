package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/smartread/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the SMARTREAD_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SMARTREAD_SERVER_LISTEN, SMARTREAD_LLM_PROVIDER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("SMARTREAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the viper precedence chain.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Rephrase: RephraseConfig{
			MaxMemories:        v.GetInt("rephrase.max_memories"),
			RelevanceThreshold: v.GetFloat64("rephrase.relevance_threshold"),
		},
		Dedup: DedupConfig{
			MaxCacheSize:            v.GetInt("dedup.max_cache_size"),
			AllowDuplicateAfterDays: v.GetInt("dedup.allow_duplicate_after_days"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Model:    v.GetString("llm.model"),
			BaseURL:  v.GetString("llm.base_url"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		Memory: MemoryConfig{
			Provider:   v.GetString("memory.provider"),
			UserID:     v.GetString("memory.user_id"),
			QdrantHost: v.GetString("memory.qdrant_host"),
			QdrantPort: v.GetInt("memory.qdrant_port"),
			Collection: v.GetString("memory.collection"),
			SQLitePath: v.GetString("memory.sqlite_path"),
		},
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
			LibSQLDSN:   v.GetString("storage.libsql_dsn"),
		},
		Server: ServerConfig{
			Listen:           v.GetString("server.listen"),
			RequestTimeout:   v.GetString("server.request_timeout"),
			SessionCacheSize: v.GetInt("server.session_cache_size"),
		},
		Events: EventsConfig{
			Buffer:       v.GetInt("events.buffer"),
			Workers:      v.GetInt("events.workers"),
			History:      v.GetInt("events.history"),
			KafkaBrokers: v.GetStringSlice("events.kafka_brokers"),
			KafkaTopic:   v.GetString("events.kafka_topic"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("rephrase.max_memories", d.Rephrase.MaxMemories)
	v.SetDefault("rephrase.relevance_threshold", d.Rephrase.RelevanceThreshold)

	v.SetDefault("dedup.max_cache_size", d.Dedup.MaxCacheSize)
	v.SetDefault("dedup.allow_duplicate_after_days", d.Dedup.AllowDuplicateAfterDays)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("memory.provider", d.Memory.Provider)
	v.SetDefault("memory.user_id", d.Memory.UserID)
	v.SetDefault("memory.qdrant_host", d.Memory.QdrantHost)
	v.SetDefault("memory.qdrant_port", d.Memory.QdrantPort)
	v.SetDefault("memory.collection", d.Memory.Collection)
	v.SetDefault("memory.sqlite_path", d.Memory.SQLitePath)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)
	v.SetDefault("storage.libsql_dsn", d.Storage.LibSQLDSN)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.session_cache_size", d.Server.SessionCacheSize)

	v.SetDefault("events.buffer", d.Events.Buffer)
	v.SetDefault("events.workers", d.Events.Workers)
	v.SetDefault("events.history", d.Events.History)
	v.SetDefault("events.kafka_brokers", d.Events.KafkaBrokers)
	v.SetDefault("events.kafka_topic", d.Events.KafkaTopic)

	v.SetDefault("log.level", d.Log.Level)
}
