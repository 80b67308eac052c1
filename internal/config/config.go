// Package config loads run configuration from defaults, an optional YAML file,
// an optional .env file and SPL_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. SPL_SPLIT_SEED.
const EnvPrefix = "SPL"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete run configuration
type Config struct {
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Split   SplitConfig   `yaml:"split" envconfig:"SPLIT"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Storage StorageConfig `yaml:"storage" envconfig:"STORAGE"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
}

// DataConfig controls ingestion and cleaning.
type DataConfig struct {
	Dir             string `yaml:"dir" envconfig:"DIR" validate:"required"`
	SampleSize      int    `yaml:"sample_size" envconfig:"SAMPLE_SIZE" validate:"gte=0"` // 0 loads every file
	MinObservations int    `yaml:"min_observations" envconfig:"MIN_OBSERVATIONS" validate:"gte=1"`
	Workers         int    `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`
}

// SplitConfig controls partitioning.
type SplitConfig struct {
	TestSize float64 `yaml:"test_size" envconfig:"TEST_SIZE" validate:"gt=0,lt=1"`
	ValSize  float64 `yaml:"val_size" envconfig:"VAL_SIZE" validate:"gte=0,lt=1"`
	Seed     int64   `yaml:"seed" envconfig:"SEED"`
}

// OutputConfig controls the artifact sinks.
type OutputConfig struct {
	Dir      string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Workbook bool   `yaml:"workbook" envconfig:"WORKBOOK"`
	Chart    bool   `yaml:"chart" envconfig:"CHART"`
}

// StorageConfig holds optional database DSNs. Empty disables the backend.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	ClickHouseDSN string `yaml:"clickhouse_dsn" envconfig:"CLICKHOUSE_DSN"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Mode  string `yaml:"mode" envconfig:"MODE" validate:"oneof=dev prod production"`
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"ENABLED"`
	Addr      string `yaml:"addr" envconfig:"ADDR" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" envconfig:"NAMESPACE" validate:"required"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Data: DataConfig{
			Dir:             "data",
			SampleSize:      100,
			MinObservations: 10,
			Workers:         4,
		},
		Split: SplitConfig{
			TestSize: 0.2,
			ValSize:  0.1,
			Seed:     42,
		},
		Output: OutputConfig{
			Dir:      ".",
			Workbook: true,
			Chart:    true,
		},
		Logging: LoggingConfig{
			Mode:  "dev",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr:      ":9090",
			Namespace: "steam_price_lab",
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// Only variables that are set overwrite cfg; there are no default tags.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadFromFile decodes YAML over the values already in cfg.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Split.TestSize+c.Split.ValSize >= 1 {
		return fmt.Errorf("%w: test_size + val_size must be below 1, got %v", ErrInvalidConfig, c.Split.TestSize+c.Split.ValSize)
	}
	return nil
}
