package config

import (
	"strings"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/bytesize"
	"github.com/spf13/viper"
)

// registerDefaults registers every configuration key with viper so that
// environment variable overrides resolve even when no config file exists.
// Boolean keys that default to true must live here; ApplyDefaults cannot
// distinguish "false" from "unset".
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.max_metadata_bytes", "64KB")

	v.SetDefault("auth.mode", "jwt")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "juststorage")
	v.SetDefault("auth.jwt_ttl", "24h")

	v.SetDefault("storage.hot_root", "")
	v.SetDefault("storage.cold_root", "")
	v.SetDefault("storage.durable_writes", true)
	v.SetDefault("storage.verify_on_read", false)

	v.SetDefault("catalog.url", "")
	v.SetDefault("catalog.max_conns", 16)
	v.SetDefault("catalog.min_conns", 2)
	v.SetDefault("catalog.max_conn_lifetime", "1h")
	v.SetDefault("catalog.max_conn_idle_time", "15m")
	v.SetDefault("catalog.health_check_period", "30s")
	v.SetDefault("catalog.statement_timeout", "30s")

	v.SetDefault("gc.interval", "60s")
	v.SetDefault("gc.batch_size", 100)
	v.SetDefault("gc.concurrent_batches", 10)
	v.SetDefault("gc.stuck_upload_every", 10)
	v.SetDefault("gc.stuck_upload_age", "1h")
	v.SetDefault("gc.tombstone_retention", "24h")
	v.SetDefault("gc.scan_filesystem", false)
	v.SetDefault("gc.fs_orphan_min_age", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "auto")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9090")

	v.SetDefault("telemetry.tracing_enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 0.1)
	v.SetDefault("telemetry.profiling_enabled", false)
	v.SetDefault("telemetry.service_name", "juststorage")
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Called after loading configuration from file and environment variables to
// fill in any remaining zero values. Explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyAuthDefaults(&cfg.Auth)
	applyCatalogDefaults(&cfg.Catalog)
	applyGCDefaults(&cfg.GC)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.MaxMetadataBytes == 0 {
		cfg.MaxMetadataBytes = 64 * bytesize.KB
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.Mode == "" {
		cfg.Mode = "jwt"
	}
	cfg.Mode = strings.ToLower(cfg.Mode)

	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "juststorage"
	}
	if cfg.JWTTTL == 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
}

func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 16
	}
	if cfg.MinConns == 0 {
		cfg.MinConns = 2
	}
	if cfg.MaxConnLifetime == 0 {
		cfg.MaxConnLifetime = time.Hour
	}
	if cfg.MaxConnIdleTime == 0 {
		cfg.MaxConnIdleTime = 15 * time.Minute
	}
	if cfg.HealthCheckPeriod == 0 {
		cfg.HealthCheckPeriod = 30 * time.Second
	}
	if cfg.StatementTimeout == 0 {
		cfg.StatementTimeout = 30 * time.Second
	}
}

func applyGCDefaults(cfg *GCConfig) {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.ConcurrentBatches == 0 {
		cfg.ConcurrentBatches = 10
	}
	if cfg.StuckUploadEvery == 0 {
		cfg.StuckUploadEvery = 10
	}
	if cfg.StuckUploadAge == 0 {
		cfg.StuckUploadAge = time.Hour
	}
	if cfg.TombstoneRetention == 0 {
		cfg.TombstoneRetention = 24 * time.Hour
	}
	if cfg.FSOrphanMinAge == 0 {
		cfg.FSOrphanMinAge = time.Hour
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "auto"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.ListenAddr == "" {
		cfg.ListenAddr = ":9090"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 0.1
	}
	if cfg.PyroscopeEndpoint == "" {
		cfg.PyroscopeEndpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "juststorage"
	}
}

// GetDefaultConfig returns a fully-defaulted configuration suitable as a
// starting point for 'juststorage init'. Storage roots and the catalog URL
// are intentionally left for the operator to fill in.
func GetDefaultConfig() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Storage.DurableWrites = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.ListenAddr = ":9090"
	cfg.Server.RequestTimeout = 60 * time.Second
	cfg.Telemetry.Insecure = true
	return &cfg
}
