package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent smartread configuration stored as
// config.toml in the .smartread/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Rephrase  RephraseConfig  `toml:"rephrase"`
	Dedup     DedupConfig     `toml:"dedup"`
	LLM       LLMConfig       `toml:"llm"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Memory    MemoryConfig    `toml:"memory"`
	Storage   StorageConfig   `toml:"storage"`
	Server    ServerConfig    `toml:"server"`
	Events    EventsConfig    `toml:"events"`
	Log       LogConfig       `toml:"log"`
}

// RephraseConfig holds the default retrieval options used when a request
// does not carry its own.
type RephraseConfig struct {
	MaxMemories        int     `toml:"max_memories,omitempty"`
	RelevanceThreshold float64 `toml:"relevance_threshold"`
}

// DedupConfig bounds the deduplication cache. MaxCacheSize <= 0 disables
// trimming and AllowDuplicateAfterDays == 0 disables expiry.
type DedupConfig struct {
	MaxCacheSize            int `toml:"max_cache_size"`
	AllowDuplicateAfterDays int `toml:"allow_duplicate_after_days"`
}

// Expiry converts AllowDuplicateAfterDays to a duration.
func (d DedupConfig) Expiry() time.Duration {
	if d.AllowDuplicateAfterDays <= 0 {
		return 0
	}
	return time.Duration(d.AllowDuplicateAfterDays) * 24 * time.Hour
}

// LLMConfig selects the text generation provider.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// MemoryConfig selects the memory store backend.
type MemoryConfig struct {
	Provider   string `toml:"provider,omitempty"`
	UserID     string `toml:"user_id,omitempty"`
	QdrantHost string `toml:"qdrant_host,omitempty"`
	QdrantPort int    `toml:"qdrant_port,omitempty"`
	Collection string `toml:"collection,omitempty"`
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// StorageConfig selects the key/value backend behind the deduplication cache.
type StorageConfig struct {
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
	LibSQLDSN   string `toml:"libsql_dsn,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Listen           string `toml:"listen,omitempty"`
	RequestTimeout   string `toml:"request_timeout,omitempty"`
	SessionCacheSize int    `toml:"session_cache_size,omitempty"`
}

// Timeout parses RequestTimeout, returning 0 when it is empty or invalid.
func (s ServerConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}

// EventsConfig sizes the event dispatcher and optionally points it at Kafka.
type EventsConfig struct {
	Buffer       int      `toml:"buffer,omitempty"`
	Workers      int      `toml:"workers,omitempty"`
	History      int      `toml:"history,omitempty"`
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(name string, field func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"rephrase.max_memories": intKey("rephrase.max_memories", func(c *Config) *int { return &c.Rephrase.MaxMemories }),
	"rephrase.relevance_threshold": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Rephrase.RelevanceThreshold, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for rephrase.relevance_threshold: %w", err)
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("invalid value for rephrase.relevance_threshold: %v is outside [0, 1]", f)
			}
			c.Rephrase.RelevanceThreshold = f
			return nil
		},
	},
	"dedup.max_cache_size":             intKey("dedup.max_cache_size", func(c *Config) *int { return &c.Dedup.MaxCacheSize }),
	"dedup.allow_duplicate_after_days": intKey("dedup.allow_duplicate_after_days", func(c *Config) *int { return &c.Dedup.AllowDuplicateAfterDays }),
	"llm.provider":                     stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.model":                        stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.base_url":                     stringKey(func(c *Config) *string { return &c.LLM.BaseURL }),
	"embedding.provider":               stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":                 stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":                  stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"memory.provider":            stringKey(func(c *Config) *string { return &c.Memory.Provider }),
	"memory.user_id":             stringKey(func(c *Config) *string { return &c.Memory.UserID }),
	"memory.qdrant_host":         stringKey(func(c *Config) *string { return &c.Memory.QdrantHost }),
	"memory.qdrant_port":         intKey("memory.qdrant_port", func(c *Config) *int { return &c.Memory.QdrantPort }),
	"memory.collection":          stringKey(func(c *Config) *string { return &c.Memory.Collection }),
	"memory.sqlite_path":         stringKey(func(c *Config) *string { return &c.Memory.SQLitePath }),
	"storage.driver":             stringKey(func(c *Config) *string { return &c.Storage.Driver }),
	"storage.sqlite_path":        stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn":       stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),
	"storage.libsql_dsn":         stringKey(func(c *Config) *string { return &c.Storage.LibSQLDSN }),
	"server.listen":              stringKey(func(c *Config) *string { return &c.Server.Listen }),
	"server.request_timeout": {
		get: func(c *Config) string { return c.Server.RequestTimeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for server.request_timeout: %w", err)
			}
			c.Server.RequestTimeout = v
			return nil
		},
	},
	"server.session_cache_size": intKey("server.session_cache_size", func(c *Config) *int { return &c.Server.SessionCacheSize }),
	"events.buffer":             intKey("events.buffer", func(c *Config) *int { return &c.Events.Buffer }),
	"events.workers":            intKey("events.workers", func(c *Config) *int { return &c.Events.Workers }),
	"events.history":            intKey("events.history", func(c *Config) *int { return &c.Events.History }),
	"events.kafka_brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.KafkaBrokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.KafkaBrokers = splitList(v)
			return nil
		},
	},
	"events.kafka_topic": stringKey(func(c *Config) *string { return &c.Events.KafkaTopic }),
	"log.level":          stringKey(func(c *Config) *string { return &c.Log.Level }),
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
