package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background maintenance, such as the idle session sweep
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs maintenance jobs on standard five-field cron schedules.
// A job still running when its next tick fires is skipped, and a panicking
// job is recovered and logged instead of taking the server down.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a scheduler; schedules use the same parser as config validation
func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	clog := cronLogger{log: log}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		log: log,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Entries()).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job
// Schedule examples:
//   - "@every 1m"    - the default session sweep
//   - "*/5 * * * *"  - every 5 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddJob(schedule, cron.FuncJob(func() { s.run(job) }))
	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Int("entry_id", int(id)).
		Msg("Job registered")

	return nil
}

// Entries returns the number of registered jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) run(job Job) {
	start := time.Now()

	if err := job.Run(); err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return
	}

	s.log.Debug().Str("job", job.Name()).Dur("duration", time.Since(start)).Msg("Job completed")
}

// cronLogger routes cron's own messages (skips, recovered panics) to zerolog
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
