package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskProcessStatus represents the lifecycle state of a task process.
type TaskProcessStatus string

// Possible task process status values.
const (
	TaskStatusPending   TaskProcessStatus = "pending"
	TaskStatusRunning   TaskProcessStatus = "running"
	TaskStatusCompleted TaskProcessStatus = "completed"
	TaskStatusFailed    TaskProcessStatus = "failed"
	TaskStatusCancelled TaskProcessStatus = "cancelled"
)

// TaskProcessType identifies the unit of work a task process represents.
// EntityID is interpreted per type: a topic ID for GenerateTopicHistory,
// a topic history ID for SendTopicHistory, and a customer ID for the rest.
type TaskProcessType string

// Possible task process types.
const (
	TaskTypeGenerateTopicHistory   TaskProcessType = "generate_topic_history"
	TaskTypeSendTopicHistory       TaskProcessType = "send_topic_history"
	TaskTypeRegenerateTopicHistory TaskProcessType = "regenerate_topic_histories"
	TaskTypeCloseTopic             TaskProcessType = "close_topic"
	TaskTypeProcessFailedTopics    TaskProcessType = "process_failed_topics"
)

// Common validation errors for TaskProcess.
var (
	ErrTaskProcessIDEmpty         = errors.New("task process ID cannot be empty")
	ErrTaskProcessEntityIDEmpty   = errors.New("task process entity ID cannot be empty")
	ErrTaskProcessCustomerIDEmpty = errors.New("task process customer ID cannot be empty")
	ErrTaskProcessTypeInvalid     = errors.New("invalid task process type")
	ErrTaskProcessStatusInvalid   = errors.New("invalid task process status")
)

// TaskProcess is a durable unit of deferred work. Instances are immutable:
// lifecycle transitions return a new value rather than mutating in place, so
// every revision can be persisted with a plain Save and concurrent in-memory
// references never alias a half-updated task.
type TaskProcess struct {
	ID          uuid.UUID         `json:"id"`
	EntityID    uuid.UUID         `json:"entity_id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Type        TaskProcessType   `json:"type"`
	Status      TaskProcessStatus `json:"status"`
	ErrorMsg    string            `json:"error_msg,omitempty"`
	ScheduledTo *time.Time        `json:"scheduled_to,omitempty"`
	ProcessAt   *time.Time        `json:"process_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewTaskProcess creates a pending TaskProcess for the given entity, customer
// and type. scheduledTo may be nil, meaning the task is due immediately.
// Returns an error if validation fails.
func NewTaskProcess(
	entityID uuid.UUID,
	customerID uuid.UUID,
	taskType TaskProcessType,
	scheduledTo *time.Time,
) (TaskProcess, error) {
	tp := TaskProcess{
		ID:          uuid.New(),
		EntityID:    entityID,
		CustomerID:  customerID,
		Type:        taskType,
		Status:      TaskStatusPending,
		ScheduledTo: scheduledTo,
		CreatedAt:   time.Now().UTC(),
	}

	if err := tp.Validate(); err != nil {
		return TaskProcess{}, err
	}

	return tp, nil
}

// Validate checks if the TaskProcess has valid data.
// Returns an error if any field fails validation.
func (t TaskProcess) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskProcessIDEmpty
	}

	if t.EntityID == uuid.Nil {
		return ErrTaskProcessEntityIDEmpty
	}

	if t.CustomerID == uuid.Nil {
		return ErrTaskProcessCustomerIDEmpty
	}

	if !isValidTaskProcessType(t.Type) {
		return ErrTaskProcessTypeInvalid
	}

	if !isValidTaskProcessStatus(t.Status) {
		return ErrTaskProcessStatusInvalid
	}

	return nil
}

// StartProcessing returns a copy of the task marked running with ProcessAt
// set to the current instant. All other fields are preserved.
func (t TaskProcess) StartProcessing() TaskProcess {
	now := time.Now().UTC()
	next := t
	next.Status = TaskStatusRunning
	next.ProcessAt = &now
	return next
}

// WithStatus returns a copy of the task with the given status and error
// message. Legal transitions are a caller discipline enforced by the
// executor and runners, not by the entity itself.
func (t TaskProcess) WithStatus(status TaskProcessStatus, errorMsg string) TaskProcess {
	next := t
	next.Status = status
	next.ErrorMsg = errorMsg
	return next
}

// IsTerminal reports whether the task has reached a final state.
func (t TaskProcess) IsTerminal() bool {
	switch t.Status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsDue reports whether the task is eligible for execution at the given
// instant: pending, and either unscheduled or scheduled at or before now.
func (t TaskProcess) IsDue(now time.Time) bool {
	if t.Status != TaskStatusPending {
		return false
	}
	return t.ScheduledTo == nil || !t.ScheduledTo.After(now)
}

// isValidTaskProcessStatus checks if the given status is a valid TaskProcessStatus.
func isValidTaskProcessStatus(status TaskProcessStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusRunning, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidTaskProcessType checks if the given type is a valid TaskProcessType.
func isValidTaskProcessType(taskType TaskProcessType) bool {
	switch taskType {
	case TaskTypeGenerateTopicHistory, TaskTypeSendTopicHistory,
		TaskTypeRegenerateTopicHistory, TaskTypeCloseTopic,
		TaskTypeProcessFailedTopics:
		return true
	default:
		return false
	}
}
