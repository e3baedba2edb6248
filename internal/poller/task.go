// Package poller keeps page state fresh by polling the dashboard API on fixed intervals.
package poller

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"coin-dashboard/internal/observability"
)

// TaskStats counts task outcomes.
type TaskStats struct {
	Runs     int64
	Failures int64
	Skipped  int64
}

// Task runs a function on a fixed interval. At most one run is in flight;
// ticks that arrive while a run is in progress are skipped. A failed run is
// logged and the schedule continues unchanged.
type Task struct {
	name      string
	interval  time.Duration
	immediate bool
	fn        func(ctx context.Context) error
	logger    *log.Logger

	inFlight atomic.Bool
	runs     atomic.Int64
	failures atomic.Int64
	skipped  atomic.Int64
}

// NewTask creates a task. When immediate is true the first run starts
// without waiting for the first tick.
func NewTask(name string, interval time.Duration, immediate bool, fn func(ctx context.Context) error, logger *log.Logger) *Task {
	if logger == nil {
		logger = log.Default()
	}
	return &Task{
		name:      name,
		interval:  interval,
		immediate: immediate,
		fn:        fn,
		logger:    logger,
	}
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Stats returns a snapshot of the task counters.
func (t *Task) Stats() TaskStats {
	return TaskStats{
		Runs:     t.runs.Load(),
		Failures: t.failures.Load(),
		Skipped:  t.skipped.Load(),
	}
}

// Run ticks until ctx is cancelled and waits for the in-flight run to return.
func (t *Task) Run(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	if t.immediate {
		t.tick(ctx, &wg)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx, &wg)
		}
	}
}

func (t *Task) tick(ctx context.Context, wg *sync.WaitGroup) {
	if ctx.Err() != nil {
		return
	}
	if !t.inFlight.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		observability.RecordPollRun(t.name, "skipped")
		t.logger.Printf("%s: previous run still in flight, skipping", t.name)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer t.inFlight.Store(false)

		t.runs.Add(1)
		if err := t.fn(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			t.failures.Add(1)
			observability.RecordPollRun(t.name, "error")
			t.logger.Printf("%s: poll failed: %v", t.name, err)
			return
		}
		observability.RecordPollRun(t.name, "ok")
	}()
}
