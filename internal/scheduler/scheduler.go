package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"matchsync/ingestion/internal/client"
	"matchsync/ingestion/internal/metrics"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RunStats is what a task reports back from one run
type RunStats struct {
	UpstreamCalls int
	RowsWritten   int
}

// TaskFunc is one refresh cycle of a task
type TaskFunc func(ctx context.Context) (RunStats, error)

// Task is a named background refresh job. Tasks with an Interval run on
// a ticker; tasks with a CronSpec run on the cron schedule. Exactly one
// of the two must be set.
type Task struct {
	Name     string
	Interval time.Duration
	CronSpec string
	Run      TaskFunc
}

// TaskStats is the cumulative per-task counter set exposed on /status
type TaskStats struct {
	Runs          int64      `json:"runs"`
	Successes     int64      `json:"successes"`
	Errors        int64      `json:"errors"`
	QuotaSkips    int64      `json:"quotaSkips"`
	OverlapSkips  int64      `json:"overlapSkips"`
	UpstreamCalls int64      `json:"upstreamCalls"`
	RowsWritten   int64      `json:"rowsWritten"`
	LastRunAt     *time.Time `json:"lastRunAt,omitempty"`
}

// taskState tracks one task's runtime state. running is a CAS guard: a
// tick that fires while the previous run is still in flight is skipped,
// never queued.
type taskState struct {
	task    Task
	running atomic.Bool

	mu    sync.Mutex
	stats TaskStats
}

// Scheduler drives the configured refresh tasks. It can be stopped and
// started again through the worker's control endpoints; counters are
// cumulative across restarts.
type Scheduler struct {
	tasks []*taskState

	// mu serializes Start and Stop. The control endpoints call them
	// from concurrent HTTP handlers, so stopChan and cron must only be
	// replaced or torn down under this lock.
	mu       sync.Mutex
	cron     *cron.Cron
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
}

// NewScheduler creates a scheduler over the given tasks
func NewScheduler(tasks []Task) *Scheduler {
	s := &Scheduler{}
	for _, t := range tasks {
		s.tasks = append(s.tasks, &taskState{task: t})
	}
	return s
}

// Running reports whether the scheduler is currently started
func (s *Scheduler) Running() bool {
	return s.started.Load()
}

// Start runs every task once immediately, then arms the per-task
// tickers and cron entries. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	// Validate every schedule before arming anything, so a bad task
	// cannot leave earlier tasks ticking behind a failed Start
	schedules := make(map[string]cron.Schedule)
	for _, st := range s.tasks {
		if st.task.CronSpec != "" {
			schedule, err := cron.ParseStandard(st.task.CronSpec)
			if err != nil {
				return fmt.Errorf("failed to schedule task %s: %w", st.task.Name, err)
			}
			schedules[st.task.Name] = schedule
			continue
		}
		if st.task.Interval <= 0 {
			return fmt.Errorf("task %s has no interval or cron schedule", st.task.Name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started.Load() {
		return nil
	}

	stopChan := make(chan struct{})
	s.stopChan = stopChan
	s.cron = cron.New()

	log.Info().Int("tasks", len(s.tasks)).Msg("Scheduler starting...")

	for _, st := range s.tasks {
		st := st

		if schedule, ok := schedules[st.task.Name]; ok {
			s.cron.Schedule(schedule, cron.FuncJob(func() {
				s.runTask(ctx, st)
			}))
			log.Info().
				Str("task", st.task.Name).
				Str("schedule", st.task.CronSpec).
				Msg("Cron task scheduled")
			continue
		}

		s.wg.Add(1)
		go s.runLoop(ctx, st, stopChan)
		log.Info().
			Str("task", st.task.Name).
			Dur("interval", st.task.Interval).
			Msg("Interval task scheduled")
	}

	s.cron.Start()

	// Warm run so data is fresh right after startup instead of one
	// full interval later
	for _, st := range s.tasks {
		st := st
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runTask(ctx, st)
		}()
	}

	s.started.Store(true)
	return nil
}

// Stop halts all tasks and waits for in-flight runs to finish.
// Idempotent; a stopped scheduler can be started again.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started.Load() {
		return
	}
	s.started.Store(false)

	log.Info().Msg("Stopping scheduler...")
	close(s.stopChan)
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

// Stats returns a snapshot of every task's cumulative counters
func (s *Scheduler) Stats() map[string]TaskStats {
	out := make(map[string]TaskStats, len(s.tasks))
	for _, st := range s.tasks {
		st.mu.Lock()
		out[st.task.Name] = st.stats
		st.mu.Unlock()
	}
	return out
}

func (s *Scheduler) runLoop(ctx context.Context, st *taskState, stopChan chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(st.task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopChan:
			return
		case <-ticker.C:
			s.runTask(ctx, st)
		}
	}
}

// runTask executes one cycle of a task with the overlap guard and
// error classification. Quota exhaustion is an expected steady state
// near the daily ceiling, counted but not logged as an error.
func (s *Scheduler) runTask(ctx context.Context, st *taskState) {
	if !st.running.CompareAndSwap(false, true) {
		st.mu.Lock()
		st.stats.OverlapSkips++
		st.mu.Unlock()
		metrics.TaskRunsTotal.WithLabelValues(st.task.Name, "overlap_skip").Inc()
		log.Debug().Str("task", st.task.Name).Msg("Previous run still in flight, skipping tick")
		return
	}
	defer st.running.Store(false)

	start := time.Now()
	stats, err := s.safeRun(ctx, st.task)
	elapsed := time.Since(start)

	now := time.Now()
	st.mu.Lock()
	st.stats.Runs++
	st.stats.LastRunAt = &now
	st.stats.UpstreamCalls += int64(stats.UpstreamCalls)
	st.stats.RowsWritten += int64(stats.RowsWritten)

	switch {
	case err == nil:
		st.stats.Successes++
	case errors.Is(err, client.ErrQuotaExhausted):
		st.stats.QuotaSkips++
	default:
		st.stats.Errors++
	}
	st.mu.Unlock()

	metrics.TaskRunDuration.WithLabelValues(st.task.Name).Observe(elapsed.Seconds())

	switch {
	case err == nil:
		metrics.TaskRunsTotal.WithLabelValues(st.task.Name, "success").Inc()
		log.Info().
			Str("task", st.task.Name).
			Int("rows", stats.RowsWritten).
			Int("upstream_calls", stats.UpstreamCalls).
			Dur("duration", elapsed).
			Msg("Task run complete")
	case errors.Is(err, client.ErrQuotaExhausted):
		metrics.TaskRunsTotal.WithLabelValues(st.task.Name, "quota_skip").Inc()
		log.Debug().Str("task", st.task.Name).Msg("Daily call budget exhausted, run skipped")
	default:
		metrics.TaskRunsTotal.WithLabelValues(st.task.Name, "error").Inc()
		log.Error().Err(err).
			Str("task", st.task.Name).
			Dur("duration", elapsed).
			Msg("Task run failed")
	}
}

// safeRun invokes the task, converting a panic into an error so one
// bad payload cannot take down the worker
func (s *Scheduler) safeRun(ctx context.Context, t Task) (stats RunStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", t.Name, r)
		}
	}()
	return t.Run(ctx)
}
