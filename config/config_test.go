package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := LoadDefaultConfig()

	if cfg.GetDataPath() != "./data" {
		t.Errorf("Expected default data_path to be './data', got '%s'", cfg.GetDataPath())
	}

	if cfg.Matrix.Seed != 0 {
		t.Errorf("Expected default matrix seed to be 0, got %d", cfg.Matrix.Seed)
	}

	if !cfg.Ledger.Enabled {
		t.Error("Expected ledger to be enabled by default")
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := LoadDefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got error: %v", err)
	}

	cfg.DataPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Config with empty data_path should fail validation")
	}

	cfg = LoadDefaultConfig()
	cfg.Engine.MaxMemoryMB = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Config with negative max_memory_mb should fail validation")
	}

	cfg = LoadDefaultConfig()
	cfg.Matrix.Seed = -5
	if err := cfg.Validate(); err == nil {
		t.Error("Config with negative matrix seed should fail validation")
	}
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "floe.yml")

	cfg := LoadDefaultConfig()
	cfg.DataPath = dir
	cfg.Matrix.Seed = 42
	cfg.Warehouse.URI = "s3://warehouse/floe"
	cfg.Warehouse.S3.Endpoint = "localhost:9000"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.DataPath != dir {
		t.Errorf("Expected data_path '%s', got '%s'", dir, loaded.DataPath)
	}
	if loaded.Matrix.Seed != 42 {
		t.Errorf("Expected matrix seed 42, got %d", loaded.Matrix.Seed)
	}
	if loaded.Warehouse.URI != "s3://warehouse/floe" {
		t.Errorf("Expected warehouse URI to round-trip, got '%s'", loaded.Warehouse.URI)
	}
	if loaded.Warehouse.S3.Endpoint != "localhost:9000" {
		t.Errorf("Expected s3 endpoint to round-trip, got '%s'", loaded.Warehouse.S3.Endpoint)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	if err == nil {
		t.Fatal("Expected LoadConfig to fail for a missing file")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("log: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("Expected LoadConfig to fail for malformed YAML")
	}
}
