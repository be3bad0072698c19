// Package scheduler runs reconciliation sweeps on a fixed interval, gated to
// business hours.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepRunner executes one reconciliation sweep over the trailing window
// ending at now.
type SweepRunner interface {
	RunSweep(ctx context.Context, now time.Time) error
}

// RunnerFunc adapts a function to SweepRunner.
type RunnerFunc func(ctx context.Context, now time.Time) error

func (f RunnerFunc) RunSweep(ctx context.Context, now time.Time) error {
	return f(ctx, now)
}

// Config controls trigger cadence and the business-hours gate. Ticks whose
// local hour falls outside [StartHour, EndHour) are skipped.
type Config struct {
	Interval  time.Duration
	StartHour int
	EndHour   int
}

// Trigger fires a SweepRunner on an interval. It follows a Start/Stop
// lifecycle and is safe against double Start and double Stop.
type Trigger struct {
	name   string
	cfg    Config
	runner SweepRunner
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTrigger creates a trigger for the named sweep.
func NewTrigger(name string, cfg Config, runner SweepRunner, logger *zap.Logger) *Trigger {
	return &Trigger{
		name:   name,
		cfg:    cfg,
		runner: runner,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches the tick loop. An immediate first sweep runs if the current
// time is inside business hours.
func (t *Trigger) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("scheduler: trigger %s already started", t.name)
	}
	if t.cfg.Interval <= 0 {
		return fmt.Errorf("scheduler: trigger %s has non-positive interval", t.name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.running = true

	t.wg.Add(1)
	go t.loop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.String("trigger", t.name),
		zap.Duration("interval", t.cfg.Interval),
		zap.Int("start_hour", t.cfg.StartHour),
		zap.Int("end_hour", t.cfg.EndHour),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.cancel()
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.Info("Sweep trigger stopped", zap.String("trigger", t.name))
}

func (t *Trigger) loop(ctx context.Context) {
	defer t.wg.Done()

	t.fire(ctx)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

// fire runs one sweep if the clock is inside business hours. Sweep errors are
// logged, never fatal; the next tick retries.
func (t *Trigger) fire(ctx context.Context) {
	now := t.now()
	if !t.withinHours(now) {
		t.logger.Debug("Skipping sweep outside business hours",
			zap.String("trigger", t.name),
			zap.Int("hour", now.Hour()),
		)
		return
	}
	if err := t.runner.RunSweep(ctx, now); err != nil {
		t.logger.Error("Sweep failed",
			zap.String("trigger", t.name),
			zap.Error(err),
		)
	}
}

func (t *Trigger) withinHours(now time.Time) bool {
	h := now.Hour()
	return h >= t.cfg.StartHour && h < t.cfg.EndHour
}
