package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct-tag rules cover the
// simple per-field constraints; Validate adds the cross-field checks that
// tags cannot express.
var validate = validator.New()

// Validate checks the configuration for consistency.
// Returns the first violation found.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return translateValidationError(err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := validateAuth(&cfg.Auth); err != nil {
		return err
	}
	if err := validateGC(&cfg.GC); err != nil {
		return err
	}
	if err := validateCatalog(&cfg.Catalog); err != nil {
		return err
	}

	return nil
}

func validateStorage(cfg *StorageConfig) error {
	hot := filepath.Clean(cfg.HotRoot)
	cold := filepath.Clean(cfg.ColdRoot)
	if hot == cold {
		return fmt.Errorf("storage: hot_root and cold_root must be distinct directories (both %q)", hot)
	}
	return nil
}

func validateAuth(cfg *AuthConfig) error {
	switch cfg.Mode {
	case "jwt":
		if cfg.JWTSecret == "" {
			return fmt.Errorf("auth: jwt_secret is required when mode is \"jwt\"")
		}
		if len(cfg.JWTSecret) < 32 {
			return fmt.Errorf("auth: jwt_secret must be at least 32 characters")
		}
		if cfg.JWTTTL <= 0 {
			return fmt.Errorf("auth: jwt_ttl must be positive")
		}
	case "static":
		if len(cfg.StaticKeys) == 0 {
			return fmt.Errorf("auth: static_keys must not be empty when mode is \"static\"")
		}
	}
	return nil
}

func validateGC(cfg *GCConfig) error {
	if cfg.Interval < 10*time.Second {
		return fmt.Errorf("gc: interval must be at least 10s (got %s)", cfg.Interval)
	}
	if cfg.BatchSize < 1 || cfg.BatchSize > 1000 {
		return fmt.Errorf("gc: batch_size must be between 1 and 1000 (got %d)", cfg.BatchSize)
	}
	if cfg.StuckUploadAge <= 0 {
		return fmt.Errorf("gc: stuck_upload_age must be positive")
	}
	if cfg.TombstoneRetention <= 0 {
		return fmt.Errorf("gc: tombstone_retention must be positive")
	}
	return nil
}

func validateCatalog(cfg *CatalogConfig) error {
	if cfg.MinConns > cfg.MaxConns {
		return fmt.Errorf("catalog: min_conns (%d) must not exceed max_conns (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return nil
}

// translateValidationError rewrites validator errors into readable
// "section.field: rule" messages.
func translateValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	switch first.Tag() {
	case "required":
		return fmt.Errorf("%s is required", first.Namespace())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", first.Namespace(), first.Param())
	case "uuid":
		return fmt.Errorf("%s must be a valid UUID", first.Namespace())
	default:
		return fmt.Errorf("%s failed validation rule %q", first.Namespace(), first.Tag())
	}
}
