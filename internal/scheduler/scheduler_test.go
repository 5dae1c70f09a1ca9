package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"matchsync/ingestion/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingTask(name string, interval time.Duration, calls *atomic.Int64, err error) Task {
	return Task{
		Name:     name,
		Interval: interval,
		Run: func(ctx context.Context) (RunStats, error) {
			calls.Add(1)
			return RunStats{RowsWritten: 1}, err
		},
	}
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("warm", time.Hour, &calls, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond, "Task should run once at startup without waiting for the interval")

	stats := s.Stats()["warm"]
	assert.EqualValues(t, 1, stats.Runs)
	assert.EqualValues(t, 1, stats.Successes)
	assert.EqualValues(t, 1, stats.RowsWritten)
	require.NotNil(t, stats.LastRunAt)
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("ticker", 30*time.Millisecond, &calls, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_NoRunsAfterStop(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("stopped", 20*time.Millisecond, &calls, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	after := calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "No task runs after Stop returns")
}

func TestScheduler_OverlapSkipped(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})

	slow := Task{
		Name:     "slow",
		Interval: 20 * time.Millisecond,
		Run: func(ctx context.Context) (RunStats, error) {
			calls.Add(1)
			<-release
			return RunStats{}, nil
		},
	}

	s := NewScheduler([]Task{slow})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))

	// Let several ticks fire while the first run is still blocked
	assert.Eventually(t, func() bool {
		return s.Stats()["slow"].OverlapSkips >= 2
	}, time.Second, 10*time.Millisecond, "Ticks during a running run are skipped")

	assert.EqualValues(t, 1, calls.Load(), "Only the first run is in flight")

	close(release)
	s.Stop()
}

func TestScheduler_QuotaExhaustionCountedAsSkip(t *testing.T) {
	var calls atomic.Int64
	err := fmt.Errorf("failed to fetch live fixtures: %w", client.ErrQuotaExhausted)
	s := NewScheduler([]Task{countingTask("starved", time.Hour, &calls, err)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return s.Stats()["starved"].Runs == 1
	}, time.Second, 10*time.Millisecond)

	stats := s.Stats()["starved"]
	assert.EqualValues(t, 1, stats.QuotaSkips, "Quota exhaustion is a skip, not an error")
	assert.Zero(t, stats.Errors)
	assert.Zero(t, stats.Successes)
}

func TestScheduler_ErrorCounted(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("failing", time.Hour, &calls, errors.New("upstream broke"))})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return s.Stats()["failing"].Errors == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_PanicRecovered(t *testing.T) {
	panicking := Task{
		Name:     "panicking",
		Interval: time.Hour,
		Run: func(ctx context.Context) (RunStats, error) {
			panic("bad payload")
		},
	}

	s := NewScheduler([]Task{panicking})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return s.Stats()["panicking"].Errors == 1
	}, time.Second, 10*time.Millisecond, "Panic is converted to a failed run")
}

func TestScheduler_Restart(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("revived", time.Hour, &calls, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.False(t, s.Running())

	require.NoError(t, s.Start(ctx))
	defer s.Stop()
	assert.True(t, s.Running())

	assert.Eventually(t, func() bool {
		return calls.Load() == 2
	}, time.Second, 10*time.Millisecond, "Restart triggers a fresh warm run")

	assert.EqualValues(t, 2, s.Stats()["revived"].Runs, "Counters are cumulative across restarts")
}

func TestScheduler_ConcurrentStartStop(t *testing.T) {
	var calls atomic.Int64
	s := NewScheduler([]Task{countingTask("contended", 10*time.Millisecond, &calls, nil)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The control endpoints expose Start and Stop to arbitrary HTTP
	// callers, so interleaved calls from many goroutines must never
	// panic or leave the scheduler half torn down
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if j%2 == 0 {
					assert.NoError(t, s.Start(ctx))
				} else {
					s.Stop()
				}
			}
		}()
	}
	wg.Wait()

	s.Stop()
	assert.False(t, s.Running())

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "No task runs once the final Stop returns")
}

func TestScheduler_BadCronSpecArmsNothing(t *testing.T) {
	var calls atomic.Int64
	tasks := []Task{
		countingTask("healthy", 10*time.Millisecond, &calls, nil),
		{Name: "broken", CronSpec: "not a cron spec", Run: func(ctx context.Context) (RunStats, error) {
			return RunStats{}, nil
		}},
	}
	s := NewScheduler(tasks)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.Running())

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, calls.Load(), "A failed Start leaves no task ticking")
}

func TestScheduler_RejectsTaskWithoutSchedule(t *testing.T) {
	s := NewScheduler([]Task{{Name: "orphan", Run: func(ctx context.Context) (RunStats, error) {
		return RunStats{}, nil
	}}})

	err := s.Start(context.Background())
	assert.Error(t, err)
}
