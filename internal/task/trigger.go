package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCronSpec fires at the top of every hour, UTC.
const DefaultCronSpec = "0 * * * *"

// ErrRunInFlight is returned by TriggerNow when a workflow run is already
// executing.
var ErrRunInFlight = errors.New("workflow run already in flight")

// WorkflowExecutor is the part of the workflow the trigger drives.
type WorkflowExecutor interface {
	Execute(ctx context.Context) error
}

// TriggerStatus is a snapshot of the trigger's state.
type TriggerStatus struct {
	Running   bool `json:"running"`
	Scheduled bool `json:"scheduled"`
}

// Trigger fires the workflow on a cron cadence. A process-local atomic
// boolean guards against overlapping runs: a firing that arrives while a
// previous run is still executing is skipped and logged, never queued. The
// guard is scoped to this process only; multi-instance deployments need an
// external lock or must accept duplicate work.
type Trigger struct {
	workflow WorkflowExecutor
	logger   *slog.Logger

	running atomic.Bool

	mu   sync.Mutex
	cron *cron.Cron
}

// NewTrigger creates a new Trigger for the given workflow.
func NewTrigger(workflow WorkflowExecutor, logger *slog.Logger) *Trigger {
	return &Trigger{
		workflow: workflow,
		logger:   logger.With("component", "periodic_trigger"),
	}
}

// Start begins firing the workflow on the given cron expression (standard
// five-field syntax, evaluated in UTC). An empty expression falls back to
// DefaultCronSpec. Returns an error if the expression is invalid or the
// trigger is already started.
func (t *Trigger) Start(expression string) error {
	if expression == "" {
		expression = DefaultCronSpec
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron != nil {
		return errors.New("trigger already started")
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(expression, t.fire); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expression, err)
	}

	c.Start()
	t.cron = c
	t.logger.Info("periodic trigger started", "cron", expression)
	return nil
}

// Stop halts the cron schedule. An in-flight run is not interrupted.
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cron == nil {
		return
	}

	t.cron.Stop()
	t.cron = nil
	t.logger.Info("periodic trigger stopped")
}

// TriggerNow runs the workflow immediately, bypassing the cadence but still
// respecting the reentrancy guard. Returns ErrRunInFlight when a run is
// already executing.
func (t *Trigger) TriggerNow(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrRunInFlight
	}
	defer t.running.Store(false)

	t.logger.Info("manual workflow trigger")
	if err := t.workflow.Execute(ctx); err != nil {
		t.logger.Error("workflow run failed", "error", err)
		return err
	}
	return nil
}

// TriggerAsync starts a workflow run in the background. It returns
// ErrRunInFlight immediately when a run is already executing; otherwise it
// claims the guard, launches the run, and returns nil without waiting for
// completion. Errors from the run itself are logged, not returned.
func (t *Trigger) TriggerAsync(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrRunInFlight
	}

	t.logger.Info("manual workflow trigger (async)")
	go func() {
		defer t.running.Store(false)
		if err := t.workflow.Execute(ctx); err != nil {
			t.logger.Error("workflow run failed", "error", err)
		}
	}()

	return nil
}

// Status returns whether a run is in flight and whether a cron schedule is
// active.
func (t *Trigger) Status() TriggerStatus {
	t.mu.Lock()
	scheduled := t.cron != nil
	t.mu.Unlock()

	return TriggerStatus{
		Running:   t.running.Load(),
		Scheduled: scheduled,
	}
}

// fire is the cron callback. Errors are logged and swallowed so a failing
// run never crashes the process; the guard is cleared in all paths.
func (t *Trigger) fire() {
	if !t.running.CompareAndSwap(false, true) {
		t.logger.Info("skipping scheduled run, previous run still in flight")
		return
	}
	defer t.running.Store(false)

	t.logger.Info("scheduled workflow trigger")
	if err := t.workflow.Execute(context.Background()); err != nil {
		t.logger.Error("workflow run failed", "error", err)
	}
}
