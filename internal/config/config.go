// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Data sources the artist repository can be built from.
const (
	DataSourceFile     = "file"
	DataSourcePostgres = "postgres"
	DataSourceRedis    = "redis"
	DataSourceS3       = "s3"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Artist data
	DataSource string `koanf:"data_source"` // file, postgres, redis or s3
	DataFile   string `koanf:"data_file"`   // JSON or .cbor dataset for the file source

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (dataset source and shared rate limiting)
	RedisURL string `koanf:"redis_url"`
	RedisKey string `koanf:"redis_key"`

	// S3-compatible object storage
	S3Bucket          string `koanf:"s3_bucket"`
	S3Key             string `koanf:"s3_key"`
	S3Endpoint        string `koanf:"s3_endpoint"`
	S3Region          string `koanf:"s3_region"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`

	// Ranking
	RankingCalibrationPath string `koanf:"ranking_calibration_path"`

	// Rate limiting
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporter     string  `koanf:"tracing_exporter"`
	OTLPEndpoint        string  `koanf:"otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// Configuration validation errors.
var (
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
	ErrPortOutOfRange           = errors.New("PORT must be between 1 and 65535")
	ErrInvalidDataSource        = errors.New("DATA_SOURCE must be one of file, postgres, redis, s3")
	ErrMissingDataFile          = errors.New("DATA_FILE is required for the file data source")
	ErrMissingDatabaseURL       = errors.New("DATABASE_URL is required for the postgres data source")
	ErrMissingRedisURL          = errors.New("REDIS_URL is required for the redis data source")
	ErrMissingS3Bucket          = errors.New("S3_BUCKET is required for the s3 data source")
	ErrMissingS3Key             = errors.New("S3_KEY is required for the s3 data source")
	ErrMissingS3AccessKeyID     = errors.New("S3_ACCESS_KEY_ID is required for the s3 data source")
	ErrMissingS3SecretAccessKey = errors.New("S3_SECRET_ACCESS_KEY is required for the s3 data source")
	ErrInvalidRateLimit         = errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	ErrInvalidSamplingRate      = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
	ErrInvalidTracingExporter   = errors.New("TRACING_EXPORTER must be otlp-http or otlp-grpc")
)

// Default values for non-secret configuration.
const (
	DefaultPort                = 8080
	DefaultEnv                 = "development"
	DefaultDataSource          = DataSourceFile
	DefaultDataFile            = "data/artists.json"
	DefaultRedisKey            = "artists:dataset"
	DefaultRateLimitRequests   = 100
	DefaultRateLimitWindow     = time.Minute
	DefaultTracingExporter     = "otlp-http"
	DefaultTracingSamplingRate = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, err := getEnvIntOrDefaultMulti([]string{"ARTISTRANK_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	rateLimitRequests, err := getEnvIntOrDefaultMulti([]string{"RATE_LIMIT_REQUESTS"}, k.Int("rate_limit_requests"), DefaultRateLimitRequests)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	rateLimitWindow, err := getEnvDurationOrDefault("RATE_LIMIT_WINDOW", k.Duration("rate_limit_window"), DefaultRateLimitWindow)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	samplingRate, err := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k, "tracing_sampling_rate", DefaultTracingSamplingRate)
	if err != nil {
		loadErrs = append(loadErrs, err)
	}

	cfg := &Config{
		Port:                   port,
		Env:                    getEnvOrDefaultMulti([]string{"ARTISTRANK_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DataSource:             strings.ToLower(getEnvOrDefault("DATA_SOURCE", k.String("data_source"), DefaultDataSource)),
		DataFile:               getEnvOrDefault("DATA_FILE", k.String("data_file"), DefaultDataFile),
		DatabaseURL:            getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:               getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		RedisKey:               getEnvOrDefault("REDIS_KEY", k.String("redis_key"), DefaultRedisKey),
		S3Bucket:               getEnvOrKoanf("S3_BUCKET", k, "s3_bucket"),
		S3Key:                  getEnvOrKoanf("S3_KEY", k, "s3_key"),
		S3Endpoint:             getEnvOrKoanf("S3_ENDPOINT", k, "s3_endpoint"),
		S3Region:               getEnvOrKoanf("S3_REGION", k, "s3_region"),
		S3AccessKeyID:          getEnvOrKoanf("S3_ACCESS_KEY_ID", k, "s3_access_key_id"),
		S3SecretAccessKey:      getEnvOrKoanf("S3_SECRET_ACCESS_KEY", k, "s3_secret_access_key"),
		RankingCalibrationPath: getEnvOrKoanf("RANKING_CALIBRATION_PATH", k, "ranking_calibration_path"),
		RateLimitRequests:      rateLimitRequests,
		RateLimitWindow:        rateLimitWindow,
		TracingEnabled:         getEnvBoolOrKoanf("TRACING_ENABLED", k, "tracing_enabled"),
		TracingExporter:        getEnvOrDefault("TRACING_EXPORTER", k.String("tracing_exporter"), DefaultTracingExporter),
		OTLPEndpoint:           getEnvOrKoanf("OTLP_ENDPOINT", k, "otlp_endpoint"),
		TracingSamplingRate:    samplingRate,
		TracingInsecure:        getEnvBoolOrKoanf("TRACING_INSECURE", k, "tracing_insecure"),
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	return getEnvOrDefaultMulti([]string{envKey}, koanfVal, defaultVal)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
// A 0 from the YAML file falls back to the default.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				if key == "PORT" || key == "ARTISTRANK_PORT" {
					return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
				}
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set,
// otherwise the koanf value when the key exists (0 is a valid rate), or default.
func getEnvFloatOrDefault(envKey string, k *koanf.Koanf, koanfKey string, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if k.Exists(koanfKey) {
		return k.Float64(koanfKey), nil
	}
	return defaultVal, nil
}

// getEnvDurationOrDefault parses a Go duration ("30s", "1m") from the environment.
func getEnvDurationOrDefault(envKey string, koanfVal time.Duration, defaultVal time.Duration) (time.Duration, error) {
	if val := os.Getenv(envKey); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid duration: %w", envKey, err)
		}
		return d, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvBoolOrKoanf reads a boolean flag. Unrecognized env values are ignored.
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) bool {
	enabled := k.Bool(koanfKey)
	if val := os.Getenv(envKey); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			enabled = true
		case "false", "0", "no", "off":
			enabled = false
		}
	}
	return enabled
}

// Validate checks that the selected data source is fully configured and
// that numeric settings are in range.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrPortOutOfRange)
	}

	switch c.DataSource {
	case DataSourceFile:
		if c.DataFile == "" {
			errs = append(errs, ErrMissingDataFile)
		}
	case DataSourcePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, ErrMissingDatabaseURL)
		}
	case DataSourceRedis:
		if c.RedisURL == "" {
			errs = append(errs, ErrMissingRedisURL)
		}
	case DataSourceS3:
		if c.S3Bucket == "" {
			errs = append(errs, ErrMissingS3Bucket)
		}
		if c.S3Key == "" {
			errs = append(errs, ErrMissingS3Key)
		}
		if c.S3AccessKeyID == "" {
			errs = append(errs, ErrMissingS3AccessKeyID)
		}
		if c.S3SecretAccessKey == "" {
			errs = append(errs, ErrMissingS3SecretAccessKey)
		}
	default:
		errs = append(errs, ErrInvalidDataSource)
	}

	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	if c.TracingEnabled {
		if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
			errs = append(errs, ErrInvalidSamplingRate)
		}
		if c.TracingExporter != "otlp-http" && c.TracingExporter != "otlp-grpc" {
			errs = append(errs, ErrInvalidTracingExporter)
		}
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                     fmt.Sprintf("%d", c.Port),
		"env":                      c.Env,
		"data_source":              c.DataSource,
		"data_file":                c.DataFile,
		"database_url":             maskDatabaseURL(c.DatabaseURL),
		"redis_url":                maskDatabaseURL(c.RedisURL),
		"redis_key":                c.RedisKey,
		"s3_bucket":                c.S3Bucket,
		"s3_key":                   c.S3Key,
		"s3_endpoint":              c.S3Endpoint,
		"s3_access_key_id":         maskSecret(c.S3AccessKeyID),
		"s3_secret_access_key":     maskSecret(c.S3SecretAccessKey),
		"ranking_calibration_path": c.RankingCalibrationPath,
		"rate_limit_requests":      fmt.Sprintf("%d", c.RateLimitRequests),
		"rate_limit_window":        c.RateLimitWindow.String(),
		"tracing_enabled":          fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_exporter":         c.TracingExporter,
		"otlp_endpoint":            c.OTLPEndpoint,
		"tracing_sampling_rate":    strconv.FormatFloat(c.TracingSamplingRate, 'f', -1, 64),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskDatabaseURL masks the password in a connection URL (postgres://, redis://).
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
