package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingWorkflow blocks inside Execute until released.
type blockingWorkflow struct {
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	executes int
	mu       sync.Mutex
}

func newBlockingWorkflow() *blockingWorkflow {
	return &blockingWorkflow{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (w *blockingWorkflow) Execute(ctx context.Context) error {
	w.mu.Lock()
	w.executes++
	w.mu.Unlock()
	w.once.Do(func() { close(w.started) })
	<-w.release
	return nil
}

func TestTrigger_TriggerNowRespectsGuard(t *testing.T) {
	t.Parallel()

	workflow := newBlockingWorkflow()
	trigger := NewTrigger(workflow, newTestLogger())

	done := make(chan error, 1)
	go func() {
		done <- trigger.TriggerNow(context.Background())
	}()

	// Wait until the first run is inside the workflow.
	select {
	case <-workflow.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for workflow to start")
	}

	assert.True(t, trigger.Status().Running)

	// A second manual trigger while the first is in flight is refused.
	err := trigger.TriggerNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInFlight)

	close(workflow.release)
	require.NoError(t, <-done)

	assert.False(t, trigger.Status().Running, "guard must be cleared after the run")
	assert.Equal(t, 1, workflow.executes, "overlapping firings are skipped, not queued")
}

func TestTrigger_WorkflowErrorPropagatesAndClearsGuard(t *testing.T) {
	t.Parallel()

	boom := errors.New("stage failed")
	trigger := NewTrigger(workflowFunc(func(ctx context.Context) error { return boom }), newTestLogger())

	err := trigger.TriggerNow(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, trigger.Status().Running, "guard must be cleared even on failure")

	// The trigger stays usable after a failed run.
	err = trigger.TriggerNow(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestTrigger_TriggerAsync(t *testing.T) {
	t.Parallel()

	workflow := newBlockingWorkflow()
	trigger := NewTrigger(workflow, newTestLogger())

	require.NoError(t, trigger.TriggerAsync(context.Background()))

	select {
	case <-workflow.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for workflow to start")
	}

	assert.True(t, trigger.Status().Running)
	assert.ErrorIs(t, trigger.TriggerAsync(context.Background()), ErrRunInFlight)

	close(workflow.release)

	// The guard clears once the background run finishes.
	require.Eventually(t, func() bool {
		return !trigger.Status().Running
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, workflow.executes)
}

func TestTrigger_StartStopLifecycle(t *testing.T) {
	t.Parallel()

	trigger := NewTrigger(workflowFunc(func(ctx context.Context) error { return nil }), newTestLogger())

	status := trigger.Status()
	assert.False(t, status.Scheduled)

	require.NoError(t, trigger.Start(""))
	assert.True(t, trigger.Status().Scheduled)

	// Starting twice is an error.
	assert.Error(t, trigger.Start(DefaultCronSpec))

	trigger.Stop()
	assert.False(t, trigger.Status().Scheduled)

	// Stop is idempotent.
	trigger.Stop()

	// The trigger can be restarted after a stop.
	require.NoError(t, trigger.Start("*/5 * * * *"))
	trigger.Stop()
}

func TestTrigger_InvalidCronExpression(t *testing.T) {
	t.Parallel()

	trigger := NewTrigger(workflowFunc(func(ctx context.Context) error { return nil }), newTestLogger())

	err := trigger.Start("not a cron spec")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
	assert.False(t, trigger.Status().Scheduled)
}

// workflowFunc adapts a function to WorkflowExecutor.
type workflowFunc func(ctx context.Context) error

func (f workflowFunc) Execute(ctx context.Context) error { return f(ctx) }
