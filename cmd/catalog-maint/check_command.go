package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/belovedzguard/beloved-api/internal/bootstrap"
	"github.com/belovedzguard/beloved-api/pkg/db"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check database connectivity and schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pool, err := ctx.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			status := db.Check(cmd.Context(), pool)
			rows := [][]string{{"postgres", healthWord(status.Healthy), status.ResponseTime, status.Error}}

			m, err := bootstrap.Migrator(cmd.Context(), cfg.Postgres)
			if err != nil {
				rows = append(rows, []string{"schema", "down", "", err.Error()})
			} else {
				defer m.Close()
				version, dirty, verr := m.Version()
				switch {
				case verr != nil:
					rows = append(rows, []string{"schema", "down", "", verr.Error()})
				case dirty:
					rows = append(rows, []string{"schema", "dirty", "", fmt.Sprintf("version %d", version)})
				default:
					rows = append(rows, []string{"schema", "ok", "", fmt.Sprintf("version %d", version)})
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Check", "Status", "Latency", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			if !status.Healthy {
				return fmt.Errorf("database unreachable")
			}
			return nil
		},
	}
}

func healthWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "down"
}
