package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key looked up in the
// environment, e.g. CATALOG_SERVER_PORT for server.port.
const EnvPrefix = "CATALOG"

// legacyEnv maps configuration keys to the variable names older deployments
// exported. The prefixed name is always checked first.
var legacyEnv = map[string]string{
	"server.port":               "PORT",
	"postgres.url":              "DATABASE_URL",
	"redis.url":                 "REDIS_URL",
	"auth.domain":               "AUTH0_DOMAIN",
	"auth.audience":             "AUTH0_AUDIENCE",
	"auth.admin_subject":        "ADMIN_AUTH0_ID",
	"storage.access_key_id":     "CLOUDFLARE_R2_ACCESS_KEY_ID",
	"storage.secret_access_key": "CLOUDFLARE_R2_SECRET_ACCESS_KEY",
	"storage.endpoint":          "CLOUDFLARE_R2_ENDPOINT",
	"storage.bucket":            "CLOUDFLARE_R2_BUCKET",
	"storage.public_base_url":   "CLOUDFLARE_R2_PUBLIC_BASE_URL",
	"media.base_url":            "MEDIA_BASE_URL",
	"mail.host":                 "EMAIL_HOST",
	"mail.port":                 "EMAIL_PORT",
	"mail.username":             "EMAIL_USER",
	"mail.password":             "EMAIL_PASSWORD",
	"mail.recipient":            "CONTACT_EMAIL",
	"legacy.mongo_url":          "MONGODB_URL",
}

// FileLoader loads configuration from an optional YAML file, a .env file and
// environment variables.
type FileLoader struct {
	configPath string
	envFile    string
	validator  *Validator
}

// NewFileLoader creates a new file loader. An empty path searches
// ./config/config.yaml and ./config.yaml.
func NewFileLoader(configPath string) *FileLoader {
	return &FileLoader{
		configPath: configPath,
		envFile:    ".env",
		validator:  NewValidator(),
	}
}

// WithEnvFile overrides the dotenv file read before the environment is
// consulted. An empty name skips dotenv loading.
func (l *FileLoader) WithEnvFile(name string) *FileLoader {
	l.envFile = name
	return l
}

// Load loads and validates the configuration.
func (l *FileLoader) Load() (*Config, error) {
	if err := l.loadDotenv(); err != nil {
		return nil, err
	}

	v := newViper()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional when no explicit path was given
		var notFound viper.ConfigFileNotFoundError
		if l.configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return l.decode(v)
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	loader := NewFileLoader("")
	if err := loader.loadDotenv(); err != nil {
		return nil, err
	}
	return loader.decode(newViper())
}

func (l *FileLoader) loadDotenv() error {
	if l.envFile == "" {
		return nil
	}
	// godotenv never overrides variables that are already set
	if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", l.envFile, err)
	}
	return nil
}

func (l *FileLoader) decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, legacy)
	}

	return v
}

// setDefaults registers every key so that environment-only values are picked
// up by Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.auto_migrate", false)
	v.SetDefault("server.grpc_port", 0)

	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "beloved")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.conn_max_idle_time", 30*time.Minute)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("auth.domain", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.admin_subjects", []string{})
	v.SetDefault("auth.admin_subject", "")

	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "auto")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.presign_ttl", 5*time.Minute)

	v.SetDefault("media.base_url", "https://media.belovedzguard.com")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.recipient", "")
	v.SetDefault("mail.breaker_failures", 5)
	v.SetDefault("mail.breaker_cooldown", time.Minute)

	v.SetDefault("contact.limit", 3)
	v.SetDefault("contact.window", time.Hour)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "catalog-api")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sample_rate", 1.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("legacy.mongo_url", "")
	v.SetDefault("legacy.database", "test")

	v.SetDefault("maintenance.schedule", "0 3 * * *")
	v.SetDefault("maintenance.concurrency", 4)
}
