package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/belovedzguard/beloved-api/internal/maintenance"
	"github.com/belovedzguard/beloved-api/internal/repository"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

const backfillJob = "asset-backfill"

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var (
		lockPath string
		timeout  time.Duration
		runNow   bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the asset backfill on the maintenance schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger()

			lock := flock.New(lockPath)
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another scheduler holds %s", lockPath)
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					log.Warn("failed to release scheduler lock", logger.Error(err))
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := ctx.pool(runCtx)
			if err != nil {
				return err
			}
			defer pool.Close()

			backfiller := maintenance.NewBackfiller(repository.NewSongRepository(pool), cfg.Media.BaseURL, log)
			job := func(jobCtx context.Context) error {
				report, err := backfiller.Run(jobCtx, maintenance.BackfillOptions{
					Concurrency: cfg.Maintenance.Concurrency,
				})
				if err != nil {
					return err
				}
				log.Info("asset backfill finished",
					logger.Int("songs", report.Songs),
					logger.Int("updated", report.Updated),
					logger.Int("failed", report.Failed),
				)
				return nil
			}

			scheduler := maintenance.NewScheduler(log)
			if err := scheduler.Add(backfillJob, cfg.Maintenance.Schedule, timeout, job); err != nil {
				return err
			}

			if runNow {
				if err := scheduler.RunNow(runCtx, backfillJob); err != nil {
					log.Error("initial backfill failed", logger.Error(err))
				}
			}

			scheduler.Start()
			log.Info("scheduler started",
				logger.String("schedule", cfg.Maintenance.Schedule),
				logger.String("lock", lockPath),
				logger.String("next", scheduler.Next().Format(time.RFC3339)),
			)

			<-runCtx.Done()
			log.Info("scheduler stopping")
			scheduler.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&lockPath, "lock", filepath.Join(os.TempDir(), "catalog-maint.lock"), "Lock file preventing concurrent schedulers")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Deadline for a single run")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run the backfill once before waiting for the schedule")

	return cmd
}
