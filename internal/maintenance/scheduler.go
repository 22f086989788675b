package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/belovedzguard/beloved-api/pkg/logger"
)

// DefaultSchedule runs maintenance at 03:00 every day.
const DefaultSchedule = "0 3 * * *"

// Job is one unit of scheduled maintenance.
type Job func(ctx context.Context) error

type entry struct {
	job     Job
	timeout time.Duration
}

// Scheduler runs named jobs on cron expressions. A job still running when
// its next tick arrives is skipped for that tick.
type Scheduler struct {
	cron *cron.Cron
	log  logger.Logger

	mu   sync.Mutex
	jobs map[string]entry
}

// NewScheduler creates a scheduler using the local time zone.
func NewScheduler(log logger.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:  log,
		jobs: make(map[string]entry),
	}
}

// Add registers job under name to run on spec, a standard five-field cron
// expression. Each run gets its own context bounded by timeout.
func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q already scheduled", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.run(context.Background(), name) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}
	s.jobs[name] = entry{job: job, timeout: timeout}

	s.log.Info("Maintenance job scheduled",
		logger.String("job", name),
		logger.String("schedule", spec),
	)
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Maintenance scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Maintenance scheduler stopped")
}

// Next returns the earliest upcoming run. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// RunNow runs the job named name immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	return s.run(ctx, name)
}

func (s *Scheduler) run(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	s.log.Info("Maintenance job started", logger.String("job", name))
	if err := e.job(ctx); err != nil {
		s.log.Error("Maintenance job failed",
			logger.String("job", name),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return err
	}
	s.log.Info("Maintenance job completed",
		logger.String("job", name),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
