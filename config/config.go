package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Sanaflow SanaflowConfig `yaml:"sanaflow"`
	Source   SourceConfig   `yaml:"source"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SanaflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type SourceConfig struct {
	URL        string            `yaml:"url"`
	Timeout    time.Duration     `yaml:"timeout"`
	Headers    map[string]string `yaml:"headers"`
	Historical HistoricalConfig  `yaml:"historical"`
}

// HistoricalConfig lists extra endpoints probed after the main fetch. The
// SANA API does not document a history surface, so these are best-effort
// and failures are non-fatal.
type HistoricalConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Endpoints []string `yaml:"endpoints"`
}

type FetcherConfig struct {
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts"`
	BaseDelay         time.Duration `yaml:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay"`
	BackoffMultiplier int           `yaml:"backoff_multiplier"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	BurstSize         int `yaml:"burst_size"`
}

type OutputConfig struct {
	Dir           string        `yaml:"dir"`
	RawFile       string        `yaml:"raw_file"`
	OrganizedFile string        `yaml:"organized_file"`
	CSVFile       string        `yaml:"csv_file"`
	Parquet       ParquetConfig `yaml:"parquet"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	File        string `yaml:"file"`
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	Output        string `yaml:"output"`
	MaxAge        int    `yaml:"max_age"`
	DashboardName string `yaml:"dashboard_name"`
}

// LoadConfig reads and validates the YAML configuration, applying defaults
// for optional sections and AWS environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Source: SourceConfig{
			Timeout: 60 * time.Second,
		},
		Fetcher: FetcherConfig{
			Retry: RetryConfig{
				MaxAttempts:       3,
				BaseDelay:         time.Second,
				MaxDelay:          30 * time.Second,
				BackoffMultiplier: 2,
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 1,
				BurstSize:         2,
			},
		},
		Output: OutputConfig{
			Dir:           "currency_data",
			RawFile:       "currency_data_raw.json",
			OrganizedFile: "currency_data_organized.json",
			CSVFile:       "currency_data.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config, AppEnvironment()); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func validateConfig(cfg *Config, env string) error {
	if cfg.Sanaflow.Name == "" {
		return fmt.Errorf("sanaflow.name is required")
	}

	if cfg.Sanaflow.Version == "" {
		return fmt.Errorf("sanaflow.version is required")
	}

	if cfg.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	if _, err := url.ParseRequestURI(cfg.Source.URL); err != nil {
		return fmt.Errorf("source.url '%s' is invalid: %w", cfg.Source.URL, err)
	}

	if cfg.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be greater than 0")
	}

	if cfg.Fetcher.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("fetcher.retry.max_attempts must be greater than 0")
	}
	if cfg.Fetcher.Retry.BaseDelay <= 0 {
		return fmt.Errorf("fetcher.retry.base_delay must be greater than 0")
	}

	if cfg.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	if cfg.Output.Parquet.Enabled && cfg.Output.Parquet.File == "" {
		return fmt.Errorf("output.parquet.file is required when parquet is enabled")
	}

	// Production and staging deployments must persist their exports; a
	// local run may keep everything on disk.
	if IsProductionLike(env) && !cfg.Storage.S3.Enabled {
		return fmt.Errorf("storage.s3 must be enabled when APP_ENV is %s", env)
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
