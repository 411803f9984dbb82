package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recap-api/internal/domain"
)

func failedTask(t *testing.T, errorMsg string) domain.TaskProcess {
	t.Helper()
	tp, err := domain.NewTaskProcess(uuid.New(), uuid.New(), domain.TaskTypeGenerateTopicHistory, nil)
	require.NoError(t, err)
	return tp.StartProcessing().WithStatus(domain.TaskStatusFailed, errorMsg)
}

func TestFailedRunner_RevivesTransientFailures(t *testing.T) {
	t.Parallel()

	tasks := NewMockTaskProcessStore()
	transient := failedTask(t, "googleapi: Error 503: The model is overloaded. Please try again later.")
	permanent := failedTask(t, "topic not found")
	tasks.Seed(transient, permanent)

	runner := NewProcessFailedTopicsRunner(tasks, newTestLogger())

	driving, err := domain.NewTaskProcess(uuid.New(), uuid.New(), domain.TaskTypeProcessFailedTopics, nil)
	require.NoError(t, err)

	err = runner.Execute(context.Background(), driving)
	require.NoError(t, err)

	gotTransient, _ := tasks.Get(transient.ID)
	assert.Equal(t, domain.TaskStatusPending, gotTransient.Status, "transient failure must be revived")
	assert.Empty(t, gotTransient.ErrorMsg, "revival clears the error message")

	gotPermanent, _ := tasks.Get(permanent.ID)
	assert.Equal(t, domain.TaskStatusFailed, gotPermanent.Status, "permanent failure must stay failed")
	assert.Equal(t, "topic not found", gotPermanent.ErrorMsg)
}

func TestFailedRunner_SaveErrorDoesNotBlockBatch(t *testing.T) {
	t.Parallel()

	tasks := NewMockTaskProcessStore()
	first := failedTask(t, "model is overloaded")
	second := failedTask(t, "rate limit exceeded for project")
	tasks.Seed(first, second)

	// The first revival fails to save; the second must still go through.
	tasks.SaveFn = func(ctx context.Context, tp domain.TaskProcess) error {
		if tp.ID == first.ID {
			return errors.New("write conflict")
		}
		tasks.Seed(tp)
		return nil
	}

	runner := NewProcessFailedTopicsRunner(tasks, newTestLogger())

	driving, err := domain.NewTaskProcess(uuid.New(), uuid.New(), domain.TaskTypeProcessFailedTopics, nil)
	require.NoError(t, err)

	err = runner.Execute(context.Background(), driving)
	require.NoError(t, err)

	gotFirst, _ := tasks.Get(first.ID)
	assert.Equal(t, domain.TaskStatusFailed, gotFirst.Status)

	gotSecond, _ := tasks.Get(second.ID)
	assert.Equal(t, domain.TaskStatusPending, gotSecond.Status)
}

func TestIsTransientErrorMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		want bool
	}{
		{"googleapi: Error 503: The model is overloaded.", true},
		{"Resource has been exhausted (e.g. check quota).", true},
		{"post failed: Service Unavailable", true},
		{"rate limit exceeded for project", true},
		{"generate: circuit breaker is open", true},
		{"topic not found", false},
		{"topic is closed: 4e9c", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsTransientErrorMessage(tc.msg); got != tc.want {
			t.Errorf("IsTransientErrorMessage(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}
