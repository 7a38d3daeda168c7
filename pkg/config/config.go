// Package config loads, validates, and persists the juststorage
// configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (JUSTSTORAGE_*)
//  2. Configuration file (YAML)
//  3. Default values
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/bytesize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the juststorage server configuration.
type Config struct {
	// Server configures the HTTP API server
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Auth configures how API requests are authenticated
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`

	// Storage configures the blob filesystem roots
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Catalog configures the PostgreSQL catalog connection
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`

	// GC configures the background garbage collector
	GC GCConfig `mapstructure:"gc" yaml:"gc"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddr is the address the API server binds to (e.g., ":8080")
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	// ReadHeaderTimeout bounds how long the server waits for request headers
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`

	// RequestTimeout is the per-request middleware budget.
	// Zero disables the timeout. Upload and download bodies stream
	// beyond this budget.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// MaxMetadataBytes caps the request body size for search and
	// metadata JSON endpoints
	MaxMetadataBytes bytesize.ByteSize `mapstructure:"max_metadata_bytes" yaml:"max_metadata_bytes"`
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Mode selects the authentication scheme
	// Valid values: jwt, static, none
	Mode string `mapstructure:"mode" validate:"required,oneof=jwt static none" yaml:"mode"`

	// JWTSecret is the HMAC secret for signing and verifying tokens.
	// Required when Mode is "jwt".
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`

	// JWTIssuer is the issuer claim stamped on minted tokens
	JWTIssuer string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`

	// JWTTTL is the default lifetime of minted tokens
	JWTTTL time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	// StaticKeys lists pre-shared API keys for Mode "static".
	// Keys are stored bcrypt-hashed; use 'juststorage token hash'
	// to generate entries.
	StaticKeys []StaticKey `mapstructure:"static_keys" yaml:"static_keys,omitempty"`
}

// StaticKey is a single pre-shared API key bound to a tenant.
type StaticKey struct {
	// TokenHash is the bcrypt hash of the API key
	TokenHash string `mapstructure:"token_hash" validate:"required" yaml:"token_hash"`

	// TenantID is the tenant the key authenticates as
	TenantID string `mapstructure:"tenant_id" validate:"required,uuid" yaml:"tenant_id"`

	// User is an optional display name recorded in logs
	User string `mapstructure:"user" yaml:"user,omitempty"`
}

// StorageConfig configures the blob filesystem roots.
type StorageConfig struct {
	// HotRoot is the filesystem root for the hot storage class
	HotRoot string `mapstructure:"hot_root" validate:"required" yaml:"hot_root"`

	// ColdRoot is the filesystem root for the cold storage class.
	// Must differ from HotRoot.
	ColdRoot string `mapstructure:"cold_root" validate:"required" yaml:"cold_root"`

	// DurableWrites controls whether blob files (and their parent
	// directory on rename) are fsynced before a write is acknowledged
	DurableWrites bool `mapstructure:"durable_writes" yaml:"durable_writes"`

	// VerifyOnRead re-hashes blob content during download and fails
	// the stream on mismatch
	VerifyOnRead bool `mapstructure:"verify_on_read" yaml:"verify_on_read"`
}

// CatalogConfig configures the PostgreSQL catalog connection pool.
type CatalogConfig struct {
	// URL is the PostgreSQL connection string (postgres://...)
	URL string `mapstructure:"url" validate:"required" yaml:"url"`

	// MaxConns is the maximum number of pooled connections
	MaxConns int32 `mapstructure:"max_conns" validate:"omitempty,min=1" yaml:"max_conns"`

	// MinConns is the minimum number of idle connections kept open
	MinConns int32 `mapstructure:"min_conns" validate:"omitempty,min=0" yaml:"min_conns"`

	// MaxConnLifetime is the maximum age of a pooled connection
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`

	// MaxConnIdleTime is how long an idle connection is kept before closing
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time" yaml:"max_conn_idle_time"`

	// HealthCheckPeriod is how often idle connections are health-checked
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period" yaml:"health_check_period"`

	// StatementTimeout is applied server-side to every statement
	StatementTimeout time.Duration `mapstructure:"statement_timeout" yaml:"statement_timeout"`
}

// GCConfig configures the background garbage collector.
type GCConfig struct {
	// Interval is the time between collection cycles (minimum 10s)
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// BatchSize is the number of rows processed per batch (1-1000)
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// ConcurrentBatches bounds how many batches run in parallel
	ConcurrentBatches int `mapstructure:"concurrent_batches" validate:"omitempty,min=1" yaml:"concurrent_batches"`

	// StuckUploadEvery runs the stuck-upload reap every N cycles
	StuckUploadEvery int `mapstructure:"stuck_upload_every" validate:"omitempty,min=1" yaml:"stuck_upload_every"`

	// StuckUploadAge is how old a WRITING row must be before it is reaped
	StuckUploadAge time.Duration `mapstructure:"stuck_upload_age" yaml:"stuck_upload_age"`

	// TombstoneRetention is how long DELETED rows are kept before purge
	TombstoneRetention time.Duration `mapstructure:"tombstone_retention" yaml:"tombstone_retention"`

	// ScanFilesystem enables the optional filesystem-orphan
	// reconciliation phase
	ScanFilesystem bool `mapstructure:"scan_filesystem" yaml:"scan_filesystem"`

	// FSOrphanMinAge is the minimum file age before an unreferenced
	// blob file is considered an orphan
	FSOrphanMinAge time.Duration `mapstructure:"fs_orphan_min_age" yaml:"fs_orphan_min_age"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: debug, info, warn, error (case-insensitive)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json, auto (auto = text on a terminal, json otherwise)
	Format string `mapstructure:"format" validate:"required,oneof=text json auto" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and the HTTP server run
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// ListenAddr is the address the metrics server binds to
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
// All disabled by default.
type TelemetryConfig struct {
	// TracingEnabled controls whether distributed tracing is enabled
	TracingEnabled bool `mapstructure:"tracing_enabled" yaml:"tracing_enabled"`

	// OTLPEndpoint is the OTLP collector endpoint (host:port)
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`

	// Insecure controls whether to use insecure (non-TLS) connection
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// ProfilingEnabled controls Pyroscope continuous profiling
	ProfilingEnabled bool `mapstructure:"profiling_enabled" yaml:"profiling_enabled"`

	// PyroscopeEndpoint is the Pyroscope server URL
	PyroscopeEndpoint string `mapstructure:"pyroscope_endpoint" yaml:"pyroscope_endpoint,omitempty"`

	// ProfileTypes specifies which profile types to collect
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types,omitempty"`

	// ServiceName is the service name reported to trace and profile backends
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct with custom decode hooks.
	// Environment-only configuration works because every key has a
	// registered default.
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// It checks if the config file exists and provides user-friendly instructions if not.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  juststorage init\n\n"+
				"Or specify a custom config file:\n"+
				"  juststorage <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  juststorage init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path.
// The configuration is saved in YAML format using proper yaml tags.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use yaml.Marshal directly to respect yaml tags
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600 because the file may contain the JWT secret and key hashes
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use JUSTSTORAGE_ prefix and underscores
	// Example: JUSTSTORAGE_CATALOG_URL=postgres://...
	v.SetEnvPrefix("JUSTSTORAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Register every key so environment-only overrides resolve even
	// without a config file
	registerDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/juststorage/config.yaml
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// A missing file is acceptable; the caller falls back to env and defaults.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use
// human-readable sizes like "1Gi", "500Mi", "64KB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "juststorage")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "juststorage")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetConfigDir returns the configuration directory path (exposed for init command).
func GetConfigDir() string {
	return getConfigDir()
}
