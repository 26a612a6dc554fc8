// Package config loads and validates runtime configuration.
//
// Values resolve in three layers, later layers winning: built-in defaults,
// an optional YAML file named by CONFIG_FILE, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	AWS   AWSConfig   `yaml:"aws"`
	Table TableConfig `yaml:"table"`
	Retry RetryConfig `yaml:"retry"`
	Cache CacheConfig `yaml:"cache"`
	Log   LogConfig   `yaml:"log"`
}

// AWSConfig selects the store endpoint.
type AWSConfig struct {
	Region   string `yaml:"region" validate:"required"`
	Endpoint string `yaml:"endpoint"` // Set for local DynamoDB, empty in AWS
}

// TableConfig names the single table backing all entities.
type TableConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// RetryConfig tunes the retry executor.
type RetryConfig struct {
	MaxRetries    int           `yaml:"maxRetries" validate:"gte=0,lte=10"`
	BaseDelay     time.Duration `yaml:"baseDelay" validate:"gt=0"`
	MaxDelay      time.Duration `yaml:"maxDelay" validate:"gt=0"`
	BackoffFactor float64       `yaml:"backoffFactor" validate:"gte=1"`
	Jitter        bool          `yaml:"jitter"`
}

// CacheConfig tunes the in-memory result caches.
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	MaxSize       int           `yaml:"maxSize" validate:"gt=0"`
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	SuggestionTTL time.Duration `yaml:"suggestionTTL" validate:"gt=0"`
	PopularTTL    time.Duration `yaml:"popularTTL" validate:"gt=0"`
}

// LogConfig selects logger behavior.
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Table: TableConfig{
			Name: "talkboard-dev",
		},
		Retry: RetryConfig{
			MaxRetries:    3,
			BaseDelay:     100 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2.0,
			Jitter:        true,
		},
		Cache: CacheConfig{
			Enabled:       true,
			MaxSize:       1000,
			TTL:           5 * time.Minute,
			SuggestionTTL: 10 * time.Minute,
			PopularTTL:    15 * time.Minute,
		},
		Log: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Load builds the configuration from defaults, the optional CONFIG_FILE
// YAML overlay, and environment variables, then validates the result.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field invariants.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Retry.BaseDelay > cfg.Retry.MaxDelay {
		return fmt.Errorf("invalid configuration: baseDelay %s exceeds maxDelay %s",
			cfg.Retry.BaseDelay, cfg.Retry.MaxDelay)
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.AWS.Region, "AWS_REGION")
	setString(&cfg.AWS.Endpoint, "DYNAMODB_ENDPOINT")
	setString(&cfg.Table.Name, "TABLE_NAME")

	setInt(&cfg.Retry.MaxRetries, "RETRY_MAX_RETRIES")
	setDuration(&cfg.Retry.BaseDelay, "RETRY_BASE_DELAY")
	setDuration(&cfg.Retry.MaxDelay, "RETRY_MAX_DELAY")
	setFloat(&cfg.Retry.BackoffFactor, "RETRY_BACKOFF_FACTOR")
	setBool(&cfg.Retry.Jitter, "RETRY_JITTER")

	setBool(&cfg.Cache.Enabled, "CACHE_ENABLED")
	setInt(&cfg.Cache.MaxSize, "CACHE_MAX_SIZE")
	setDuration(&cfg.Cache.TTL, "CACHE_TTL")
	setDuration(&cfg.Cache.SuggestionTTL, "CACHE_SUGGESTION_TTL")
	setDuration(&cfg.Cache.PopularTTL, "CACHE_POPULAR_TTL")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setBool(&cfg.Log.Development, "LOG_DEVELOPMENT")
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setFloat(dst *float64, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func setBool(dst *bool, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
