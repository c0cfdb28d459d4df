package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// on "smartread serve" and "smartread rephrase" cannot drift apart.
type Flag struct {
	// Name is the long flag name (e.g. "llm-provider").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "llm.provider").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen             = "listen"
	FlagLLMProvider        = "llm-provider"
	FlagLLMModel           = "llm-model"
	FlagMemoryProvider     = "memory-provider"
	FlagEmbeddingProv      = "embedding-provider"
	FlagEmbeddingTgt       = "embedding-target"
	FlagEmbeddingModel     = "embedding-model"
	FlagEmbeddingDims      = "embedding-dimensions"
	FlagStorageDriver      = "storage-driver"
	FlagSQLite             = "sqlite"
	FlagMaxMemories        = "max-memories"
	FlagRelevanceThreshold = "relevance-threshold"
	FlagMaxCacheSize       = "max-cache-size"
)

// Flags is the registry shared by every smartread command.
var Flags = FlagSet{
	FlagListen: {
		Name: "listen", Shorthand: "l", ViperKey: "server.listen",
		Description: "Address for the HTTP API to listen on",
	},
	FlagLLMProvider: {
		Name: "llm-provider", ViperKey: "llm.provider",
		Description: "Text generation provider (gemini, openai, anthropic, ollama)",
	},
	FlagLLMModel: {
		Name: "llm-model", ViperKey: "llm.model",
		Description: "Model name for the text generation provider",
	},
	FlagMemoryProvider: {
		Name: "memory-provider", ViperKey: "memory.provider",
		Description: "Memory store backend (local, qdrant, sqlitevec)",
	},
	FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (ollama, openai)",
	},
	FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Embedding provider URL",
	},
	FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	FlagStorageDriver: {
		Name: "storage-driver", ViperKey: "storage.driver",
		Description: "Deduplication cache backend (inmemory, sqlite, libsql, postgres)",
	},
	FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to the deduplication SQLite database",
	},
	FlagMaxMemories: {
		Name: "max-memories", Shorthand: "m", ViperKey: "rephrase.max_memories",
		Description: "Maximum number of memories used for a rephrase",
	},
	FlagRelevanceThreshold: {
		Name: "relevance-threshold", Shorthand: "t", ViperKey: "rephrase.relevance_threshold",
		Description: "Memories must score strictly above this threshold",
	},
	FlagMaxCacheSize: {
		Name: "max-cache-size", ViperKey: "dedup.max_cache_size",
		Description: "Maximum deduplication records kept (0 disables trimming)",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, key string, target *uint) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddFloatFlag registers a float64 flag on cmd from the given FlagSet.
func AddFloatFlag(cmd *cobra.Command, fs FlagSet, key string, target *float64) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetFloat64(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().Float64VarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().Float64Var(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
