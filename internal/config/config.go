package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Ingestion IngestionConfig `yaml:"ingestion" envconfig:"INGESTION"`
	Analytics AnalyticsConfig `yaml:"analytics" envconfig:"ANALYTICS"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// IngestionConfig controls how raw batches are validated and deduplicated
type IngestionConfig struct {
	// DedupKey selects the deduplication key: the (order_id, product_id)
	// composite or order_id alone. Which key a deployment uses must be
	// documented alongside its data contract.
	DedupKey string `yaml:"dedup_key" envconfig:"DEDUP_KEY" default:"order_product" validate:"oneof=order_product order"`
	// MaxBatchErrors bounds the stored error list per batch; excess
	// failures are summarized by count while counts remain exact.
	MaxBatchErrors int `yaml:"max_batch_errors" envconfig:"MAX_BATCH_ERRORS" default:"100" validate:"min=1"`
	// Timezone is the canonical storage timezone for occurred_at.
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE" default:"UTC"`
}

// AnalyticsConfig controls aggregation result sizing
type AnalyticsConfig struct {
	TopRankings  int `yaml:"top_rankings" envconfig:"TOP_RANKINGS" default:"5" validate:"min=1"`
	DailyWindow  int `yaml:"daily_window" envconfig:"DAILY_WINDOW" default:"30" validate:"min=1"`
	LogHistory   int `yaml:"log_history" envconfig:"LOG_HISTORY" default:"50" validate:"min=1"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"BACKEND" default:"memory" validate:"oneof=memory file"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables win over file values.
func Load() (*Config, error) {
	return LoadFromFile(getConfigFilePath())
}

// LoadFromFile loads configuration using the given config file path.
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config

	// File values first, so env vars override them
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("SHOPPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Ingestion.Timezone); err != nil {
		return fmt.Errorf("invalid ingestion timezone %q: %w", c.Ingestion.Timezone, err)
	}
	return nil
}

// Location resolves the canonical storage timezone. Validate must have
// succeeded before calling.
func (c *IngestionConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getConfigFilePath returns the config file path, overridable via env
func getConfigFilePath() string {
	if path := os.Getenv("SHOPPULSE_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}
