package config

import (
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// Validator validates configuration values.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the entire configuration. Storage settings are left
// alone: uploads report their absence per request.
func (v *Validator) Validate(cfg *Config) error {
	if err := v.ValidateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := v.ValidatePostgres(&cfg.Postgres); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := v.ValidateRedis(&cfg.Redis); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := v.ValidateAuth(&cfg.Auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := v.ValidateContact(&cfg.Contact); err != nil {
		return fmt.Errorf("contact: %w", err)
	}
	if err := v.ValidateMaintenance(&cfg.Maintenance); err != nil {
		return fmt.Errorf("maintenance: %w", err)
	}
	return nil
}

// ValidateServer validates server configuration.
func (v *Validator) ValidateServer(cfg *ServerConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.GRPCPort < 0 || cfg.GRPCPort > 65535 || (cfg.GRPCPort != 0 && cfg.GRPCPort == cfg.Port) {
		return fmt.Errorf("invalid grpc port: %d", cfg.GRPCPort)
	}
	switch cfg.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid mode: %q", cfg.Mode)
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// ValidatePostgres validates PostgreSQL configuration.
func (v *Validator) ValidatePostgres(cfg *PostgresConfig) error {
	if cfg.URL != "" {
		if _, err := url.Parse(cfg.URL); err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
	} else {
		if cfg.Host == "" {
			return fmt.Errorf("url or host is required")
		}
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return fmt.Errorf("invalid port: %d", cfg.Port)
		}
		if cfg.Database == "" {
			return fmt.Errorf("database is required")
		}
	}

	if cfg.MaxConns < 0 || cfg.MinConns < 0 {
		return fmt.Errorf("pool sizes cannot be negative")
	}
	if cfg.MinConns > cfg.MaxConns && cfg.MaxConns > 0 {
		return fmt.Errorf("min_conns cannot exceed max_conns")
	}
	return nil
}

// ValidateRedis validates Redis configuration when it is enabled.
func (v *Validator) ValidateRedis(cfg *RedisConfig) error {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.URL == "" && (cfg.Port <= 0 || cfg.Port > 65535) {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.PoolSize < 0 {
		return fmt.Errorf("pool_size cannot be negative")
	}
	return nil
}

// ValidateAuth validates identity provider configuration.
func (v *Validator) ValidateAuth(cfg *AuthConfig) error {
	if cfg.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	if cfg.Audience == "" {
		return fmt.Errorf("audience is required")
	}
	return nil
}

// ValidateContact validates the contact form limits.
func (v *Validator) ValidateContact(cfg *ContactConfig) error {
	if cfg.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}
	return nil
}

// ValidateMaintenance validates the backfill schedule.
func (v *Validator) ValidateMaintenance(cfg *MaintenanceConfig) error {
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	return nil
}
