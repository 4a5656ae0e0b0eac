package sweep_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/orchestrator"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/shell/config"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/sweep"
	"github.com/AntonStoeckl/circulation-engine-go/eventstore/memengine"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fakes"
	"github.com/AntonStoeckl/circulation-engine-go/testutil/fixtures"
)

const tick = 5 * time.Millisecond

func runInBackground(t *testing.T, scheduler *sweep.Scheduler) (context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- scheduler.Run(ctx)
	}()

	return cancel, done
}

func stop(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func Test_Scheduler_RunsJobOnEveryTick(t *testing.T) {
	// arrange
	var calls atomic.Int64
	job := sweep.Job{
		Name:     orchestrator.SweepOverdue,
		Interval: tick,
		Run: func(context.Context) (orchestrator.SweepReport, error) {
			calls.Add(1)
			return orchestrator.SweepReport{Sweep: orchestrator.SweepOverdue, Advanced: 1}, nil
		},
	}

	scheduler, err := sweep.NewScheduler([]sweep.Job{job})
	require.NoError(t, err)

	// act
	cancel, done := runInBackground(t, scheduler)

	// assert
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, tick)
	stop(t, cancel, done)

	stats, ok := scheduler.Stats(orchestrator.SweepOverdue)
	require.True(t, ok)
	assert.GreaterOrEqual(t, stats.Runs, int64(3))
	assert.Equal(t, int64(0), stats.Failures)
	assert.Equal(t, 1, stats.Last.Advanced)
}

func Test_Scheduler_SkipsTick_WhenPreviousRunIsBusy(t *testing.T) {
	// arrange
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int64

	job := sweep.Job{
		Name:     orchestrator.SweepPickupExpiry,
		Interval: tick,
		Run: func(context.Context) (orchestrator.SweepReport, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
			}

			return orchestrator.SweepReport{}, nil
		},
	}

	scheduler, err := sweep.NewScheduler([]sweep.Job{job})
	require.NoError(t, err)

	// act
	cancel, done := runInBackground(t, scheduler)
	<-started

	// assert
	assert.Eventually(t, func() bool {
		stats, _ := scheduler.Stats(orchestrator.SweepPickupExpiry)
		return stats.Skipped >= 2
	}, time.Second, tick)
	assert.Equal(t, int64(1), calls.Load())

	close(release)
	stop(t, cancel, done)
}

func Test_Scheduler_KeepsRunning_WhenJobFails(t *testing.T) {
	// arrange
	job := sweep.Job{
		Name:     orchestrator.SweepRequestExpiry,
		Interval: tick,
		Run: func(context.Context) (orchestrator.SweepReport, error) {
			return orchestrator.SweepReport{}, errors.New("event store down")
		},
	}

	scheduler, err := sweep.NewScheduler([]sweep.Job{job})
	require.NoError(t, err)

	// act
	cancel, done := runInBackground(t, scheduler)

	// assert
	assert.Eventually(t, func() bool {
		stats, _ := scheduler.Stats(orchestrator.SweepRequestExpiry)
		return stats.Failures >= 2
	}, time.Second, tick)
	stop(t, cancel, done)
}

func Test_Scheduler_CancelsInFlightRun_WhenStopped(t *testing.T) {
	// arrange
	started := make(chan struct{})
	var cancelled atomic.Bool

	job := sweep.Job{
		Name:     orchestrator.SweepDigitalExpiry,
		Interval: tick,
		Run: func(ctx context.Context) (orchestrator.SweepReport, error) {
			select {
			case <-started:
			default:
				close(started)
			}

			<-ctx.Done()
			cancelled.Store(true)

			return orchestrator.SweepReport{}, ctx.Err()
		},
	}

	scheduler, err := sweep.NewScheduler([]sweep.Job{job})
	require.NoError(t, err)

	cancel, done := runInBackground(t, scheduler)
	<-started

	// act
	stop(t, cancel, done)

	// assert
	assert.True(t, cancelled.Load())
}

func Test_NewScheduler_Errors(t *testing.T) {
	noop := func(context.Context) (orchestrator.SweepReport, error) { return orchestrator.SweepReport{}, nil }

	testCases := []struct {
		name        string
		jobs        []sweep.Job
		expectedErr error
	}{
		{
			name:        "no jobs",
			expectedErr: sweep.ErrNoJobs,
		},
		{
			name:        "zero interval",
			jobs:        []sweep.Job{{Name: "overdue", Run: noop}},
			expectedErr: sweep.ErrInvalidInterval,
		},
		{
			name:        "duplicate name",
			jobs:        []sweep.Job{{Name: "overdue", Interval: tick, Run: noop}, {Name: "overdue", Interval: tick, Run: noop}},
			expectedErr: sweep.ErrDuplicateJobName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := sweep.NewScheduler(tc.jobs)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Jobs_LeavesOutDisabledSweeps(t *testing.T) {
	// arrange
	o := orchestrator.New(memengine.NewEventStore(), fixtures.Policy(), fakes.NewPaymentGateway())
	cfg := config.SweepConfig{
		OverdueInterval:      time.Hour,
		PickupExpiryInterval: 15 * time.Minute,
	}

	// act
	jobs := sweep.Jobs(o, cfg)

	// assert
	require.Len(t, jobs, 2)
	assert.Equal(t, orchestrator.SweepOverdue, jobs[0].Name)
	assert.Equal(t, orchestrator.SweepPickupExpiry, jobs[1].Name)
}
