// Package config provides configuration management for the catalog API and
// its maintenance tooling.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Media       MediaConfig       `mapstructure:"media"`
	Mail        MailConfig        `mapstructure:"mail"`
	Contact     ContactConfig     `mapstructure:"contact"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Log         LogConfig         `mapstructure:"log"`
	Legacy      LegacyConfig      `mapstructure:"legacy"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	// GRPCPort serves grpc.health.v1 when non-zero.
	GRPCPort int `mapstructure:"grpc_port"`
}

// PostgresConfig holds PostgreSQL connection settings. URL wins over the
// discrete fields when both are set.
type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns a libpq-compatible connection URL.
func (c PostgresConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig holds Redis connection settings. Leaving both URL and Host
// empty disables Redis; the contact limiter then runs in-process.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether a Redis target is configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// AuthConfig holds identity provider settings.
type AuthConfig struct {
	Domain   string `mapstructure:"domain"`
	Audience string `mapstructure:"audience"`
	// AdminSubjects lists subject identifiers with admin rights.
	AdminSubjects []string `mapstructure:"admin_subjects"`
	// AdminSubject is the single-admin setting of older deployments.
	AdminSubject string `mapstructure:"admin_subject"`
}

// Admins merges AdminSubjects and AdminSubject, dropping blanks and duplicates.
func (c AuthConfig) Admins() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range append(append([]string{}, c.AdminSubjects...), c.AdminSubject) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Issuer returns the expected token issuer.
func (c AuthConfig) Issuer() string {
	return "https://" + strings.TrimSuffix(c.Domain, "/") + "/"
}

// JWKSURL returns the well-known key set location for the domain.
func (c AuthConfig) JWKSURL() string {
	return c.Issuer() + ".well-known/jwks.json"
}

// StorageConfig holds the S3-compatible object storage settings.
type StorageConfig struct {
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Endpoint        string        `mapstructure:"endpoint"`
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

// Missing names the settings a presigner cannot work without.
func (c StorageConfig) Missing() []string {
	var missing []string
	if c.AccessKeyID == "" {
		missing = append(missing, "storage.access_key_id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "storage.secret_access_key")
	}
	if c.Endpoint == "" {
		missing = append(missing, "storage.endpoint")
	}
	if c.Bucket == "" {
		missing = append(missing, "storage.bucket")
	}
	return missing
}

// MediaConfig holds the base URL canonical asset URLs are built from.
type MediaConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// MailConfig holds SMTP settings.
type MailConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	Recipient string `mapstructure:"recipient"`
	// BreakerFailures consecutive delivery errors stop delivery attempts
	// for BreakerCooldown.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// ContactConfig holds the contact form limits.
type ContactConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// TelemetryConfig holds tracing and metrics settings.
type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	Environment  string  `mapstructure:"environment"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LegacyConfig points at the document store older deployments used.
type LegacyConfig struct {
	MongoURL string `mapstructure:"mongo_url"`
	Database string `mapstructure:"database"`
}

// MaintenanceConfig holds scheduled maintenance settings.
type MaintenanceConfig struct {
	Schedule    string `mapstructure:"schedule"`
	Concurrency int    `mapstructure:"concurrency"`
}
