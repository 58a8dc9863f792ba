package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// IdleEvicter drops sessions that have not been used recently
type IdleEvicter interface {
	EvictIdle(maxIdle time.Duration) int
}

// SessionSweepJob evicts idle sessions from memory
type SessionSweepJob struct {
	sessions IdleEvicter
	maxIdle  time.Duration
	log      zerolog.Logger
}

// NewSessionSweepJob creates a new session sweep job
func NewSessionSweepJob(sessions IdleEvicter, maxIdle time.Duration, log zerolog.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		sessions: sessions,
		maxIdle:  maxIdle,
		log:      log.With().Str("job", "session_sweep").Logger(),
	}
}

// Name returns the job name
func (j *SessionSweepJob) Name() string {
	return "session_sweep"
}

// Run evicts every session idle for longer than maxIdle
func (j *SessionSweepJob) Run() error {
	evicted := j.sessions.EvictIdle(j.maxIdle)
	j.log.Debug().Int("evicted", evicted).Dur("max_idle", j.maxIdle).Msg("Session sweep finished")
	return nil
}
