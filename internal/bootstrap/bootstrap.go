// Package bootstrap holds the startup steps shared by the catalog binaries.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/migrations"
	"github.com/belovedzguard/beloved-api/pkg/config"
	"github.com/belovedzguard/beloved-api/pkg/db"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// ConfigEnv names the variable consulted when no --config flag is given.
const ConfigEnv = "CATALOG_CONFIG"

// LoadConfig reads the configuration from path, falling back to
// $CATALOG_CONFIG and then the default search locations.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	return config.NewFileLoader(path).Load()
}

// NewLogger builds the process logger and installs it as the global one.
func NewLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	lc := logger.DefaultConfig()
	lc.Level = level
	if cfg.Format != "" {
		lc.Format = cfg.Format
	}
	log := logger.New(lc)
	logger.SetGlobalLogger(log)
	return log, nil
}

// OpenPool connects the pgx pool described by cfg.
func OpenPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, &db.PoolConfig{
		DSN:             cfg.DSN(),
		MaxConns:        cfg.MaxConns,
		MinConns:        cfg.MinConns,
		MaxConnLifetime: cfg.ConnMaxLifetime,
		MaxConnIdleTime: cfg.ConnMaxIdleTime,
	})
}

// Migrator opens a migrator over the embedded schema. Close releases the
// underlying connection.
func Migrator(ctx context.Context, cfg config.PostgresConfig) (*db.Migrator, error) {
	conn, err := db.OpenSQL(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	m, err := db.NewMigrator(conn, migrations.FS, ".")
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(ctx context.Context, cfg config.PostgresConfig, log logger.Logger) error {
	m, err := Migrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}
	version, _, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("schema up to date", logger.Int("version", int(version)))
	return nil
}
