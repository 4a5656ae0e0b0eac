package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell"
)

const (
	logMsgSchedulerStarted = "sweep scheduler started"
	logMsgSchedulerStopped = "sweep scheduler stopped"
	logMsgRunSkipped       = "sweep run skipped, previous run still busy"
	logMsgRunFailed        = "sweep run failed"

	logAttrSweep      = "sweep"
	logAttrJobs       = "jobs"
	logAttrIntervalMS = "interval_ms"
)

var (
	ErrNoJobs           = errors.New("sweep scheduler has no jobs")
	ErrInvalidInterval  = errors.New("sweep interval must be positive")
	ErrDuplicateJobName = errors.New("duplicate sweep job name")
)

// Runner executes one sweep.
type Runner func(ctx context.Context) (orchestrator.SweepReport, error)

// Job is a named sweep with its tick interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      Runner
}

// Stats counts what happened to the ticks of one job.
type Stats struct {
	Runs     int64
	Skipped  int64
	Failures int64
	Last     orchestrator.SweepReport
}

type jobState struct {
	job      Job
	busy     atomic.Bool
	runs     atomic.Int64
	skipped  atomic.Int64
	failures atomic.Int64

	mu   sync.Mutex
	last orchestrator.SweepReport
}

// Scheduler runs each job on its own ticker.
type Scheduler struct {
	jobs   []*jobState
	logger shell.Logger
	wg     sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets a logger for run failures and skipped ticks.
func WithLogger(logger shell.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler validates the jobs and creates a Scheduler.
func NewScheduler(jobs []Job, opts ...Option) (*Scheduler, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	s := &Scheduler{}
	seen := map[string]bool{}

	for _, job := range jobs {
		if job.Interval <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, job.Name)
		}

		if seen[job.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateJobName, job.Name)
		}

		seen[job.Name] = true
		s.jobs = append(s.jobs, &jobState{job: job})
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run blocks until ctx is cancelled and all in-flight runs have returned.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info(logMsgSchedulerStarted, logAttrJobs, len(s.jobs))
	}

	for _, state := range s.jobs {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.loop(ctx, state)
		}()
	}

	<-ctx.Done()
	s.wg.Wait()

	if s.logger != nil {
		s.logger.Info(logMsgSchedulerStopped)
	}

	return nil
}

// Stats returns the counters of the named job.
func (s *Scheduler) Stats(name string) (Stats, bool) {
	for _, state := range s.jobs {
		if state.job.Name != name {
			continue
		}

		state.mu.Lock()
		last := state.last
		state.mu.Unlock()

		return Stats{
			Runs:     state.runs.Load(),
			Skipped:  state.skipped.Load(),
			Failures: state.failures.Load(),
			Last:     last,
		}, true
	}

	return Stats{}, false
}

func (s *Scheduler) loop(ctx context.Context, state *jobState) {
	ticker := time.NewTicker(state.job.Interval)
	defer ticker.Stop()

	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !state.busy.CompareAndSwap(false, true) {
				state.skipped.Add(1)

				if s.logger != nil {
					s.logger.Debug(logMsgRunSkipped, logAttrSweep, state.job.Name, logAttrIntervalMS, state.job.Interval.Milliseconds())
				}

				continue
			}

			inFlight.Add(1)

			go func() {
				defer inFlight.Done()
				defer state.busy.Store(false)

				s.runOnce(ctx, state)
			}()
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, state *jobState) {
	report, err := state.job.Run(ctx)
	state.runs.Add(1)

	state.mu.Lock()
	state.last = report
	state.mu.Unlock()

	if err != nil {
		state.failures.Add(1)

		if s.logger != nil {
			s.logger.Error(logMsgRunFailed, logAttrSweep, state.job.Name, shell.LogAttrError, err.Error())
		}
	}
}
