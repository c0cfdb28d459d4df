package config

import "slices"

// Merge returns a new Config made of base with every non-zero field of
// overlay applied on top. Neither argument is modified. A nil overlay yields a
// copy of base.
func Merge(base, overlay *Config) *Config {
	out := clone(base)
	if overlay == nil {
		return out
	}

	if overlay.Version != 0 {
		out.Version = overlay.Version
	}

	mergeInt(&out.Rephrase.MaxMemories, overlay.Rephrase.MaxMemories)
	if overlay.Rephrase.RelevanceThreshold != 0 {
		out.Rephrase.RelevanceThreshold = overlay.Rephrase.RelevanceThreshold
	}

	mergeInt(&out.Dedup.MaxCacheSize, overlay.Dedup.MaxCacheSize)
	mergeInt(&out.Dedup.AllowDuplicateAfterDays, overlay.Dedup.AllowDuplicateAfterDays)

	mergeString(&out.LLM.Provider, overlay.LLM.Provider)
	mergeString(&out.LLM.Model, overlay.LLM.Model)
	mergeString(&out.LLM.BaseURL, overlay.LLM.BaseURL)

	mergeString(&out.Embedding.Provider, overlay.Embedding.Provider)
	mergeString(&out.Embedding.Target, overlay.Embedding.Target)
	mergeString(&out.Embedding.Model, overlay.Embedding.Model)
	if overlay.Embedding.Dimensions != 0 {
		out.Embedding.Dimensions = overlay.Embedding.Dimensions
	}

	mergeString(&out.Memory.Provider, overlay.Memory.Provider)
	mergeString(&out.Memory.UserID, overlay.Memory.UserID)
	mergeString(&out.Memory.QdrantHost, overlay.Memory.QdrantHost)
	mergeInt(&out.Memory.QdrantPort, overlay.Memory.QdrantPort)
	mergeString(&out.Memory.Collection, overlay.Memory.Collection)
	mergeString(&out.Memory.SQLitePath, overlay.Memory.SQLitePath)

	mergeString(&out.Storage.Driver, overlay.Storage.Driver)
	mergeString(&out.Storage.SQLitePath, overlay.Storage.SQLitePath)
	mergeString(&out.Storage.PostgresDSN, overlay.Storage.PostgresDSN)
	mergeString(&out.Storage.LibSQLDSN, overlay.Storage.LibSQLDSN)

	mergeString(&out.Server.Listen, overlay.Server.Listen)
	mergeString(&out.Server.RequestTimeout, overlay.Server.RequestTimeout)
	mergeInt(&out.Server.SessionCacheSize, overlay.Server.SessionCacheSize)

	mergeInt(&out.Events.Buffer, overlay.Events.Buffer)
	mergeInt(&out.Events.Workers, overlay.Events.Workers)
	mergeInt(&out.Events.History, overlay.Events.History)
	if len(overlay.Events.KafkaBrokers) > 0 {
		out.Events.KafkaBrokers = slices.Clone(overlay.Events.KafkaBrokers)
	}
	mergeString(&out.Events.KafkaTopic, overlay.Events.KafkaTopic)

	mergeString(&out.Log.Level, overlay.Log.Level)

	return out
}

func clone(c *Config) *Config {
	if c == nil {
		return &Config{}
	}
	out := *c
	out.Events.KafkaBrokers = slices.Clone(c.Events.KafkaBrokers)
	return &out
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
