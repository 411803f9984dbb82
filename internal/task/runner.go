package task

import (
	"context"

	"github.com/recapd/recap-api/internal/domain"
)

// Runner is the strategy implementing the actual unit of work for one task
// type. A returned error marks the task failed; the error message is
// persisted verbatim as the task's ErrorMsg.
type Runner interface {
	Execute(ctx context.Context, tp domain.TaskProcess) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context, tp domain.TaskProcess) error

// Execute implements Runner.
func (f RunnerFunc) Execute(ctx context.Context, tp domain.TaskProcess) error {
	return f(ctx, tp)
}
