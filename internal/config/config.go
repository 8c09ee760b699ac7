// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultDatabase         = "default"
	DefaultOutputLocation   = "s3://cmathenalogs/"
	DefaultPageSize         = 1000
	DefaultPollInitialDelay = 3 * time.Second
	DefaultPollRetryDelay   = 10 * time.Second
)

// PollConfig controls how the client waits for a submitted query.
type PollConfig struct {
	InitialDelay  time.Duration // wait before the first readiness check (default 3s)
	RetryDelay    time.Duration // fixed wait between checks (default 10s)
	MaxAttempts   int           // 0 means retry until the result is readable
	DetectFailure bool          // inspect the execution state and stop on FAILED/CANCELLED
}

// StorageConfig holds object storage settings used when persisting results.
type StorageConfig struct {
	// S3 fields are optional, nil when not configured.
	S3KeyID        *string
	S3Secret       *string
	S3Endpoint     *string
	S3UsePathStyle bool

	GCSKeyFile string

	AzureAccountName string
	AzureAccountKey  string
}

// HasStaticS3Credentials returns true if both S3 key fields are set.
func (s *StorageConfig) HasStaticS3Credentials() bool {
	return s.S3KeyID != nil && s.S3Secret != nil
}

// HasAzureConfig returns true when shared-key Azure credentials are set.
func (s *StorageConfig) HasAzureConfig() bool {
	return s.AzureAccountName != "" && s.AzureAccountKey != ""
}

// Config holds the configuration for the query client.
type Config struct {
	Database       string // target database (default "default")
	OutputLocation string // result staging location (default s3://cmathenalogs/)
	WorkGroup      string // optional Athena workgroup
	Catalog        string // optional data catalog
	Region         string // AWS region override; empty defers to the SDK chain
	PageSize       int32  // rows per GetQueryResults page (max 1000)
	LogLevel       string // log level: debug, info, warn, error (default "warn")

	Poll    PollConfig
	Storage StorageConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// Validate checks settings that callers may override after LoadFromEnv.
// Call it once all overrides are applied.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.OutputLocation, "s3://") {
		return fmt.Errorf("output location must be an s3:// URI, got %q", c.OutputLocation)
	}
	return nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps a level name to an slog.Level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Database:       os.Getenv("ATHENA_DATABASE"),
		OutputLocation: os.Getenv("ATHENA_OUTPUT_LOCATION"),
		WorkGroup:      os.Getenv("ATHENA_WORKGROUP"),
		Catalog:        os.Getenv("ATHENA_CATALOG"),
		Region:         os.Getenv("AWS_REGION"),
		LogLevel:       os.Getenv("ATHENAQ_LOG_LEVEL"),
		Poll: PollConfig{
			DetectFailure: parseBoolEnvDefault("ATHENA_POLL_DETECT_FAILURE", false),
		},
		Storage: StorageConfig{
			S3UsePathStyle:   parseBoolEnvDefault("S3_USE_PATH_STYLE", false),
			GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
			AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
			AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		},
	}

	if v := os.Getenv("ATHENA_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ATHENA_PAGE_SIZE %q", v)
		}
		if n > DefaultPageSize {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("ATHENA_PAGE_SIZE %d exceeds the service maximum, using %d", n, DefaultPageSize))
			n = DefaultPageSize
		}
		cfg.PageSize = int32(n)
	}

	// Poll cadence
	var err error
	if cfg.Poll.InitialDelay, err = parseDurationEnv("ATHENA_POLL_INITIAL_DELAY", DefaultPollInitialDelay); err != nil {
		return nil, err
	}
	if cfg.Poll.RetryDelay, err = parseDurationEnv("ATHENA_POLL_RETRY_DELAY", DefaultPollRetryDelay); err != nil {
		return nil, err
	}
	if v := os.Getenv("ATHENA_POLL_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid ATHENA_POLL_MAX_ATTEMPTS %q", v)
		}
		cfg.Poll.MaxAttempts = n
	}

	// S3 fields are optional, only set if present
	if v := os.Getenv("S3_KEY_ID"); v != "" {
		cfg.Storage.S3KeyID = &v
	}
	if v := os.Getenv("S3_SECRET"); v != "" {
		cfg.Storage.S3Secret = &v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.S3Endpoint = &v
	}
	if (cfg.Storage.S3KeyID == nil) != (cfg.Storage.S3Secret == nil) {
		return nil, fmt.Errorf("both S3_KEY_ID and S3_SECRET must be set together")
	}

	// Defaults
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.OutputLocation == "" {
		cfg.OutputLocation = DefaultOutputLocation
		cfg.Warnings = append(cfg.Warnings, "ATHENA_OUTPUT_LOCATION not set, staging results in "+DefaultOutputLocation)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.Poll.MaxAttempts == 0 && !cfg.Poll.DetectFailure {
		cfg.Warnings = append(cfg.Warnings, "polling is unbounded and ignores failed queries; set ATHENA_POLL_MAX_ATTEMPTS or ATHENA_POLL_DETECT_FAILURE to bound it")
	}

	return cfg, nil
}

func parseDurationEnv(key string, defaultVal time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
