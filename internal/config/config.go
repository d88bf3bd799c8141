package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // analytics timezones must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Database        DatabaseConfig        `yaml:"database"`
	Auth            AuthConfig            `yaml:"auth"`
	Log             LogConfig             `yaml:"log"`
	Analytics       AnalyticsConfig       `yaml:"analytics"`
	RateLimit       RateLimitConfig       `yaml:"rate_limit"`
	Worker          WorkerConfig          `yaml:"worker"`
	SnapshotStorage SnapshotStorageConfig `yaml:"snapshot_storage"`
	Client          ClientConfig          `yaml:"client"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalyticsConfig controls how submissions are stamped and bucketed.
type AnalyticsConfig struct {
	Timezone               string `yaml:"timezone"`
	CollectedOffsetMinutes int    `yaml:"collected_offset_minutes"`
}

// RateLimitConfig limits inserts per client address.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	SnapshotInterval Duration `yaml:"snapshot_interval"`
}

// SnapshotStorageConfig contains S3-compatible backup storage settings.
// An empty Bucket keeps backups local.
type SnapshotStorageConfig struct {
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	UseSSL    *bool    `yaml:"use_ssl"`
	URLExpiry Duration `yaml:"url_expiry"`
	Prefix    string   `yaml:"prefix"`
}

// ClientConfig is used by the CLI when talking to a running backend.
type ClientConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKey  string   `yaml:"-"` // env-only, never in YAML
	Timeout Duration `yaml:"timeout"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// A .env file (CLEANUP_ENV_FILE, default ".env") is read into the
// environment first; variables already set win over it.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnv("CLEANUP_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := newDefaults()

	configPath := getEnv("CLEANUP_CONFIG_PATH", "config/cleanup.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient loads configuration for CLI commands that talk to a remote
// backend, with the same sources and precedence as Load. Server settings
// are not validated, so CLEANUP_API_KEY is not required.
func LoadClient() (*Config, error) {
	if err := loadEnvFile(getEnv("CLEANUP_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := newDefaults()
	if err := loadYAMLFile(cfg, getEnv("CLEANUP_CONFIG_PATH", "config/cleanup.yaml")); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if cfg.Client.BaseURL == "" {
		return nil, errors.New("client base URL is required")
	}
	if _, err := time.LoadLocation(cfg.Analytics.Timezone); err != nil {
		return nil, fmt.Errorf("analytics timezone %q: %w", cfg.Analytics.Timezone, err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	useSSL := true
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/cleanup.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Analytics: AnalyticsConfig{
			Timezone:               catalog.DefaultTimezone,
			CollectedOffsetMinutes: catalog.CollectedAtOffsetMinutes,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             20,
		},
		Worker: WorkerConfig{
			SnapshotInterval: Duration(1 * time.Hour),
		},
		SnapshotStorage: SnapshotStorageConfig{
			Region:    "us-east-1",
			UseSSL:    &useSSL,
			URLExpiry: Duration(15 * time.Minute),
			Prefix:    "backups",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
			Timeout: Duration(30 * time.Second),
		},
	}
}

// loadEnvFile reads KEY=VALUE pairs into the environment. A missing file
// is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("reading env file: %w", err)
	}
	return nil
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	envInt("CLEANUP_PORT", &cfg.Server.Port)
	envDuration("CLEANUP_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("CLEANUP_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("CLEANUP_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Database
	envString("CLEANUP_DB_PATH", &cfg.Database.Path)

	// Auth
	envString("CLEANUP_API_KEY", &cfg.Auth.APIKey)

	// Log
	envString("CLEANUP_LOG_LEVEL", &cfg.Log.Level)
	envString("CLEANUP_LOG_FORMAT", &cfg.Log.Format)

	// Analytics
	envString("CLEANUP_TIMEZONE", &cfg.Analytics.Timezone)
	envInt("CLEANUP_COLLECTED_OFFSET_MINUTES", &cfg.Analytics.CollectedOffsetMinutes)

	// Rate limit
	if v := os.Getenv("CLEANUP_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = f
		}
	}
	envInt("CLEANUP_RATE_LIMIT_BURST", &cfg.RateLimit.Burst)

	// Worker
	envDuration("CLEANUP_SNAPSHOT_INTERVAL", &cfg.Worker.SnapshotInterval)

	// Snapshot storage
	envString("CLEANUP_SNAPSHOT_BUCKET", &cfg.SnapshotStorage.Bucket)
	envString("CLEANUP_S3_ENDPOINT", &cfg.SnapshotStorage.Endpoint)
	envString("CLEANUP_S3_REGION", &cfg.SnapshotStorage.Region)
	envString("CLEANUP_S3_ACCESS_KEY", &cfg.SnapshotStorage.AccessKey)
	envString("CLEANUP_S3_SECRET_KEY", &cfg.SnapshotStorage.SecretKey)
	if v := os.Getenv("CLEANUP_S3_USE_SSL"); v != "" {
		b := v == "true" || v == "1"
		cfg.SnapshotStorage.UseSSL = &b
	}
	envDuration("CLEANUP_S3_URL_EXPIRY", &cfg.SnapshotStorage.URLExpiry)
	envString("CLEANUP_S3_PREFIX", &cfg.SnapshotStorage.Prefix)

	// Client; the server key doubles as the client key when unset
	envString("CLEANUP_URL", &cfg.Client.BaseURL)
	cfg.Client.APIKey = getEnv("CLEANUP_CLIENT_API_KEY", cfg.Auth.APIKey)
	envDuration("CLEANUP_CLIENT_TIMEOUT", &cfg.Client.Timeout)
}

// IsDevMode reports whether CLEANUP_DEV_MODE=true.
func IsDevMode() bool {
	return os.Getenv("CLEANUP_DEV_MODE") == "true"
}

// validate checks that required configuration values are set.
// In dev mode (CLEANUP_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if !IsDevMode() && c.Auth.APIKey == "" {
		return errors.New("CLEANUP_API_KEY is required")
	}

	if _, err := time.LoadLocation(c.Analytics.Timezone); err != nil {
		return fmt.Errorf("analytics timezone %q: %w", c.Analytics.Timezone, err)
	}
	if c.Analytics.CollectedOffsetMinutes < -12*60 || c.Analytics.CollectedOffsetMinutes > 14*60 {
		return fmt.Errorf("collected offset %d minutes is out of range", c.Analytics.CollectedOffsetMinutes)
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return errors.New("rate_limit.requests_per_second must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		return errors.New("rate_limit.burst must be positive")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log format %q must be json or text", c.Log.Format)
	}

	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
