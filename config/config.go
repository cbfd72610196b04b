package config

import (
	"os"

	"github.com/gear6io/floe/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the harness configuration
type Config struct {
	Log       LogConfig       `yaml:"log"`
	DataPath  string          `yaml:"data_path"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Matrix    MatrixConfig    `yaml:"matrix"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Engine    EngineConfig    `yaml:"engine"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// WarehouseConfig selects where table data and metadata files live.
// URI is either a local directory or an s3:// location; S3 settings are
// consulted only for the latter.
type WarehouseConfig struct {
	URI string   `yaml:"uri"`
	S3  S3Config `yaml:"s3"`
}

// S3Config carries object-store connection settings
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// MatrixConfig controls matrix construction
type MatrixConfig struct {
	// Seed fixes the per-run vectorization draw; 0 leaves it time-based
	Seed int64 `yaml:"seed"`
}

// LedgerConfig controls run-history persistence
type LedgerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// EngineConfig represents SQL engine tuning
type EngineConfig struct {
	MaxMemoryMB     int  `yaml:"max_memory_mb"`
	QueryTimeoutSec int  `yaml:"query_timeout_sec"`
	LoadExtensions  bool `yaml:"load_extensions"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			FilePath:   "logs/floe.log",
			Console:    true,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7,    // 7 days
			Cleanup:    true, // Cleanup log file on startup by default
		},
		DataPath: "./data",
		Warehouse: WarehouseConfig{
			URI: "", // resolved under DataPath when empty
		},
		Matrix: MatrixConfig{
			Seed: 0,
		},
		Ledger: LedgerConfig{
			Enabled: true,
			Path:    "", // resolved under DataPath when empty
		},
		Engine: EngineConfig{
			MaxMemoryMB:     512,
			QueryTimeoutSec: 300,
			LoadExtensions:  false,
		},
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New(ErrDataPathRequired, "data_path is required", nil)
	}

	if err := c.Engine.Validate(); err != nil {
		return err
	}

	if err := c.Matrix.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate validates the engine configuration
func (e *EngineConfig) Validate() error {
	if e.MaxMemoryMB < 0 {
		return errors.New(ErrEngineValidationFailed, "max_memory_mb must not be negative", nil)
	}
	if e.QueryTimeoutSec < 0 {
		return errors.New(ErrEngineValidationFailed, "query_timeout_sec must not be negative", nil)
	}
	return nil
}

// Validate validates the matrix configuration
func (m *MatrixConfig) Validate() error {
	if m.Seed < 0 {
		return errors.New(ErrMatrixValidationFailed, "matrix seed must not be negative", nil)
	}
	return nil
}

// GetDataPath returns the base data path
func (c *Config) GetDataPath() string {
	return c.DataPath
}
