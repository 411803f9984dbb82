package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTaskProcess(t *testing.T) {
	t.Parallel()
	entityID := uuid.New()
	customerID := uuid.New()

	tp, err := NewTaskProcess(entityID, customerID, TaskTypeGenerateTopicHistory, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if tp.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if tp.EntityID != entityID {
		t.Errorf("Expected entity ID %s, got %s", entityID, tp.EntityID)
	}

	if tp.CustomerID != customerID {
		t.Errorf("Expected customer ID %s, got %s", customerID, tp.CustomerID)
	}

	if tp.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, tp.Status)
	}

	if tp.ScheduledTo != nil {
		t.Errorf("Expected nil ScheduledTo, got %v", tp.ScheduledTo)
	}

	if tp.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Test invalid entity ID
	_, err = NewTaskProcess(uuid.Nil, customerID, TaskTypeGenerateTopicHistory, nil)
	if err != ErrTaskProcessEntityIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskProcessEntityIDEmpty, err)
	}

	// Test invalid customer ID
	_, err = NewTaskProcess(entityID, uuid.Nil, TaskTypeGenerateTopicHistory, nil)
	if err != ErrTaskProcessCustomerIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskProcessCustomerIDEmpty, err)
	}

	// Test invalid type
	_, err = NewTaskProcess(entityID, customerID, "unknown_type", nil)
	if err != ErrTaskProcessTypeInvalid {
		t.Errorf("Expected error %v, got %v", ErrTaskProcessTypeInvalid, err)
	}
}

func TestTaskProcessStartProcessing(t *testing.T) {
	t.Parallel()
	tp, err := NewTaskProcess(uuid.New(), uuid.New(), TaskTypeSendTopicHistory, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	running := tp.StartProcessing()

	if running.Status != TaskStatusRunning {
		t.Errorf("Expected status %s, got %s", TaskStatusRunning, running.Status)
	}

	if running.ProcessAt == nil {
		t.Fatal("Expected ProcessAt to be set")
	}

	if running.ID != tp.ID || running.EntityID != tp.EntityID || running.CustomerID != tp.CustomerID {
		t.Error("Expected identity fields to be preserved")
	}

	// Original value must be untouched (replace-on-write semantics).
	if tp.Status != TaskStatusPending {
		t.Errorf("Expected original status to remain %s, got %s", TaskStatusPending, tp.Status)
	}

	if tp.ProcessAt != nil {
		t.Error("Expected original ProcessAt to remain nil")
	}
}

func TestTaskProcessWithStatus(t *testing.T) {
	t.Parallel()
	tp, err := NewTaskProcess(uuid.New(), uuid.New(), TaskTypeCloseTopic, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	failed := tp.StartProcessing().WithStatus(TaskStatusFailed, "model is overloaded")

	if failed.Status != TaskStatusFailed {
		t.Errorf("Expected status %s, got %s", TaskStatusFailed, failed.Status)
	}

	if failed.ErrorMsg != "model is overloaded" {
		t.Errorf("Expected error message to be preserved, got %q", failed.ErrorMsg)
	}

	completed := tp.StartProcessing().WithStatus(TaskStatusCompleted, "")
	if completed.ErrorMsg != "" {
		t.Errorf("Expected empty error message, got %q", completed.ErrorMsg)
	}

	if !failed.IsTerminal() || !completed.IsTerminal() {
		t.Error("Expected failed and completed tasks to be terminal")
	}

	if tp.IsTerminal() {
		t.Error("Expected pending task to be non-terminal")
	}
}

func TestTaskProcessIsDue(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	unscheduled, _ := NewTaskProcess(uuid.New(), uuid.New(), TaskTypeGenerateTopicHistory, nil)
	if !unscheduled.IsDue(now) {
		t.Error("Expected unscheduled pending task to be due")
	}

	scheduledFuture, _ := NewTaskProcess(uuid.New(), uuid.New(), TaskTypeGenerateTopicHistory, &future)
	if scheduledFuture.IsDue(now) {
		t.Error("Expected future-scheduled task to not be due")
	}

	scheduledPast, _ := NewTaskProcess(uuid.New(), uuid.New(), TaskTypeGenerateTopicHistory, &past)
	if !scheduledPast.IsDue(now) {
		t.Error("Expected past-scheduled task to be due")
	}

	running := unscheduled.StartProcessing()
	if running.IsDue(now) {
		t.Error("Expected running task to not be due")
	}

	cancelled := unscheduled.WithStatus(TaskStatusCancelled, "")
	if cancelled.IsDue(now) {
		t.Error("Expected cancelled task to not be due")
	}
}
