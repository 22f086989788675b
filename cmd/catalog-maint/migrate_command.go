package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/belovedzguard/beloved-api/internal/bootstrap"
	"github.com/belovedzguard/beloved-api/pkg/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				return bootstrap.MigrateUp(cmd.Context(), cfg.Postgres, ctx.logger())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, ctx, func(m *db.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(cmd, ctx, func(m *db.Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Mark a version as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return withMigrator(cmd, ctx, func(m *db.Migrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
	)

	return migrateCmd
}

func withMigrator(cmd *cobra.Command, ctx *commandContext, fn func(*db.Migrator) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	m, err := bootstrap.Migrator(cmd.Context(), cfg.Postgres)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (%s)\n", version, state)
	return nil
}
