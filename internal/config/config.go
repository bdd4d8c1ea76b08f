// Package config loads EdgeSearch's process configuration: YAML-sourced
// static defaults overridable by environment variables, mirroring the
// two-layer load-then-validate pattern the query planning pipeline
// config uses.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/dzlab/edgesearch/internal/keyword"
	"github.com/dzlab/edgesearch/internal/shardkey"
)

// Config is the fully resolved process configuration.
type Config struct {
	APIKey           string `yaml:"api_key"`
	NShards          uint32 `yaml:"n_shards"`
	YakeNGrams       int    `yaml:"yake_ngrams"`
	YakeMinimumChars int    `yaml:"yake_minimum_chars"`
	KVBackend        string `yaml:"kv_backend"`
	BoltPath         string `yaml:"bolt_path"`
	ListenAddr       string `yaml:"listen_addr"`
}

func defaults() Config {
	return Config{
		NShards:          shardkey.DefaultNShards,
		YakeNGrams:       keyword.DefaultNGrams,
		YakeMinimumChars: keyword.DefaultMinimumChars,
		KVBackend:        "memory",
		BoltPath:         "edgesearch.db",
		ListenAddr:       ":8080",
	}
}

// Load reads YAML defaults from path (skipped entirely if path is
// empty or the file does not exist — every field already has a
// built-in default), then applies environment variable overrides, then
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("N_SHARDS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			cfg.NShards = uint32(n)
		}
	}
	if v := os.Getenv("YAKE_NGRAMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.YakeNGrams = n
		}
	}
	if v := os.Getenv("YAKE_MINIMUM_CHARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.YakeMinimumChars = n
		}
	}
	if v := os.Getenv("KV_BACKEND"); v != "" {
		cfg.KVBackend = v
	}
	if v := os.Getenv("BOLT_PATH"); v != "" {
		cfg.BoltPath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
}

func validate(cfg *Config) error {
	if cfg.NShards == 0 {
		return fmt.Errorf("n_shards must be positive")
	}
	if cfg.YakeNGrams <= 0 {
		return fmt.Errorf("yake_ngrams must be positive")
	}
	if cfg.YakeMinimumChars <= 0 {
		return fmt.Errorf("yake_minimum_chars must be positive")
	}
	switch cfg.KVBackend {
	case "memory", "bolt":
	default:
		return fmt.Errorf("kv_backend must be \"memory\" or \"bolt\", got %q", cfg.KVBackend)
	}
	return nil
}
