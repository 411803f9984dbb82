package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
)

// TaskProcessSearchCriteria narrows a Search over persisted tasks. Zero-value
// fields are ignored.
type TaskProcessSearchCriteria struct {
	CustomerID uuid.UUID
	Type       domain.TaskProcessType
	Status     domain.TaskProcessStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// TaskProcessStore is the durable storage and query surface for TaskProcess.
type TaskProcessStore interface {
	// Save persists the given task revision, inserting or replacing by ID.
	Save(ctx context.Context, tp domain.TaskProcess) error

	// FindPendingByType returns up to limit due tasks of the given type:
	// pending, and either unscheduled or scheduled at or before now,
	// ordered by creation time.
	FindPendingByType(
		ctx context.Context,
		taskType domain.TaskProcessType,
		limit int,
	) ([]domain.TaskProcess, error)

	// FindByEntityIDAndType returns all tasks referencing the given entity
	// with the given type, regardless of status.
	FindByEntityIDAndType(
		ctx context.Context,
		entityID uuid.UUID,
		taskType domain.TaskProcessType,
	) ([]domain.TaskProcess, error)

	// FindFailed returns all tasks currently in the failed state.
	FindFailed(ctx context.Context) ([]domain.TaskProcess, error)

	// Search returns tasks matching the given criteria, newest first.
	Search(ctx context.Context, criteria TaskProcessSearchCriteria) ([]domain.TaskProcess, error)
}
