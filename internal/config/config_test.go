package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesBuiltInDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NShards != 48 {
		t.Fatalf("NShards = %d, want 48", cfg.NShards)
	}
	if cfg.YakeNGrams != 3 || cfg.YakeMinimumChars != 2 {
		t.Fatalf("yake defaults = %d/%d, want 3/2", cfg.YakeNGrams, cfg.YakeMinimumChars)
	}
	if cfg.KVBackend != "memory" {
		t.Fatalf("KVBackend = %q, want memory", cfg.KVBackend)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("n_shards: 12\nkv_backend: bolt\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NShards != 12 {
		t.Fatalf("NShards = %d, want 12", cfg.NShards)
	}
	if cfg.KVBackend != "bolt" {
		t.Fatalf("KVBackend = %q, want bolt", cfg.KVBackend)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NShards != 48 {
		t.Fatalf("NShards = %d, want 48", cfg.NShards)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("N_SHARDS", "96")
	t.Setenv("API_KEY", "secret-value")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NShards != 96 {
		t.Fatalf("NShards = %d, want 96", cfg.NShards)
	}
	if cfg.APIKey != "secret-value" {
		t.Fatalf("APIKey = %q, want secret-value", cfg.APIKey)
	}
}

func TestLoadRejectsInvalidKVBackend(t *testing.T) {
	t.Setenv("KV_BACKEND", "redis")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unsupported kv_backend")
	}
}

func TestLoadIgnoresMalformedEnvIntegers(t *testing.T) {
	t.Setenv("N_SHARDS", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NShards != 48 {
		t.Fatalf("NShards = %d, want default 48 when env value is unparseable", cfg.NShards)
	}
}
