package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/smartread/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	ordered := []string{
		"rephrase.max_memories",
		"rephrase.relevance_threshold",
		"dedup.max_cache_size",
		"dedup.allow_duplicate_after_days",
		"llm.provider",
		"llm.model",
		"llm.base_url",
		"embedding.provider",
		"embedding.target",
		"embedding.model",
		"embedding.dimensions",
		"memory.provider",
		"memory.user_id",
		"memory.qdrant_host",
		"memory.qdrant_port",
		"memory.collection",
		"memory.sqlite_path",
		"storage.driver",
		"storage.sqlite_path",
		"storage.postgres_dsn",
		"storage.libsql_dsn",
		"server.listen",
		"server.request_timeout",
		"server.session_cache_size",
		"events.buffer",
		"events.workers",
		"events.history",
		"events.kafka_brokers",
		"events.kafka_topic",
		"log.level",
	}

	result := make([]string, 0, len(configKeys))
	seen := make(map[string]bool, len(configKeys))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
			seen[k] = true
		}
	}
	for k := range configKeys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads config.toml from the target .smartread/ directory. A
// missing file yields NewDefaultConfig(). Fields set in the file override the
// defaults, including explicit zeros for the dedup bounds and the relevance
// threshold, where zero is meaningful.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return ParseConfigTOML(data)
}

// SaveConfig persists the configuration to config.toml in the target .smartread/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes and merges them over the defaults.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	parsed := &Config{}
	md, err := toml.Decode(string(data), parsed)
	if err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if parsed.Version != 0 && parsed.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", parsed.Version, CurrentV)
	}

	cfg := Merge(NewDefaultConfig(), parsed)

	if md.IsDefined("dedup", "max_cache_size") {
		cfg.Dedup.MaxCacheSize = parsed.Dedup.MaxCacheSize
	}
	if md.IsDefined("dedup", "allow_duplicate_after_days") {
		cfg.Dedup.AllowDuplicateAfterDays = parsed.Dedup.AllowDuplicateAfterDays
	}
	if md.IsDefined("rephrase", "relevance_threshold") {
		cfg.Rephrase.RelevanceThreshold = parsed.Rephrase.RelevanceThreshold
	}

	return cfg, nil
}
