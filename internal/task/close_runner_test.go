package task

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recap-api/internal/domain"
)

type closeFixture struct {
	topics    *MockTopicStore
	histories *MockTopicHistoryStore
	tasks     *MockTaskProcessStore
	runner    *CloseTopicsRunner
}

func newCloseFixture() *closeFixture {
	topics := NewMockTopicStore()
	histories := NewMockTopicHistoryStore()
	tasks := NewMockTaskProcessStore()
	return &closeFixture{
		topics:    topics,
		histories: histories,
		tasks:     tasks,
		runner:    NewCloseTopicsRunner(topics, histories, tasks, newTestLogger()),
	}
}

func (f *closeFixture) closeTask(t *testing.T, customerID uuid.UUID) domain.TaskProcess {
	t.Helper()
	tp, err := domain.NewTaskProcess(customerID, customerID, domain.TaskTypeCloseTopic, nil)
	require.NoError(t, err)
	return tp
}

func TestCloseRunner_CancelCascade(t *testing.T) {
	t.Parallel()

	f := newCloseFixture()
	customerID := uuid.New()

	topic, err := domain.NewTopic(customerID, "Finished subject")
	require.NoError(t, err)
	f.topics.Topics[topic.ID] = topic

	// Five histories put the topic at the ceiling.
	var histories []*domain.TopicHistory
	for i := 0; i < domain.TopicHistoryCeiling; i++ {
		h, err := domain.NewTopicHistory(topic.ID, "lesson")
		require.NoError(t, err)
		f.histories.Histories[h.ID] = h
		histories = append(histories, h)
	}

	// Two pending generations on the topic.
	var pendingIDs []uuid.UUID
	for i := 0; i < 2; i++ {
		gen, err := domain.NewTaskProcess(topic.ID, customerID, domain.TaskTypeGenerateTopicHistory, nil)
		require.NoError(t, err)
		f.tasks.Seed(gen)
		pendingIDs = append(pendingIDs, gen.ID)
	}

	// Three pending sends across the topic's histories.
	for i := 0; i < 3; i++ {
		send, err := domain.NewTaskProcess(histories[i].ID, customerID, domain.TaskTypeSendTopicHistory, nil)
		require.NoError(t, err)
		f.tasks.Seed(send)
		pendingIDs = append(pendingIDs, send.ID)
	}

	// A completed send must not be touched.
	doneSend, err := domain.NewTaskProcess(histories[3].ID, customerID, domain.TaskTypeSendTopicHistory, nil)
	require.NoError(t, err)
	doneSend = doneSend.StartProcessing().WithStatus(domain.TaskStatusCompleted, "")
	f.tasks.Seed(doneSend)

	err = f.runner.Execute(context.Background(), f.closeTask(t, customerID))
	require.NoError(t, err)

	assert.True(t, f.topics.Topics[topic.ID].Closed, "topic at ceiling must be closed")

	cancelled := 0
	pending := 0
	for _, tp := range f.tasks.All() {
		switch tp.Status {
		case domain.TaskStatusCancelled:
			cancelled++
		case domain.TaskStatusPending:
			pending++
		}
	}
	assert.Equal(t, 5, cancelled, "exactly the five pending tasks must be cancelled")
	assert.Equal(t, 0, pending, "closing must leave no orphaned pending work")

	for _, id := range pendingIDs {
		got, ok := f.tasks.Get(id)
		require.True(t, ok)
		assert.Equal(t, domain.TaskStatusCancelled, got.Status)
	}

	gotDone, _ := f.tasks.Get(doneSend.ID)
	assert.Equal(t, domain.TaskStatusCompleted, gotDone.Status)
}

func TestCloseRunner_TopicBelowCeilingStaysOpen(t *testing.T) {
	t.Parallel()

	f := newCloseFixture()
	customerID := uuid.New()

	topic, err := domain.NewTopic(customerID, "Ongoing subject")
	require.NoError(t, err)
	f.topics.Topics[topic.ID] = topic

	for i := 0; i < domain.TopicHistoryCeiling-1; i++ {
		h, err := domain.NewTopicHistory(topic.ID, "lesson")
		require.NoError(t, err)
		f.histories.Histories[h.ID] = h
	}

	pendingGen, err := domain.NewTaskProcess(topic.ID, customerID, domain.TaskTypeGenerateTopicHistory, nil)
	require.NoError(t, err)
	f.tasks.Seed(pendingGen)

	err = f.runner.Execute(context.Background(), f.closeTask(t, customerID))
	require.NoError(t, err)

	assert.False(t, f.topics.Topics[topic.ID].Closed)

	got, _ := f.tasks.Get(pendingGen.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status, "work for open topics must not be cancelled")
}

func TestCloseRunner_TopicSaveFailureIsIsolated(t *testing.T) {
	t.Parallel()

	f := newCloseFixture()
	customerID := uuid.New()

	stuck, err := domain.NewTopic(customerID, "Stuck subject")
	require.NoError(t, err)
	healthy, err := domain.NewTopic(customerID, "Healthy subject")
	require.NoError(t, err)
	f.topics.Topics[stuck.ID] = stuck
	f.topics.Topics[healthy.ID] = healthy

	for _, topic := range []*domain.Topic{stuck, healthy} {
		for i := 0; i < domain.TopicHistoryCeiling; i++ {
			h, err := domain.NewTopicHistory(topic.ID, "lesson")
			require.NoError(t, err)
			f.histories.Histories[h.ID] = h
		}
	}

	f.topics.SaveFn = func(ctx context.Context, topic *domain.Topic) error {
		if topic.ID == stuck.ID {
			return assert.AnError
		}
		f.topics.Topics[topic.ID] = topic
		return nil
	}

	err = f.runner.Execute(context.Background(), f.closeTask(t, customerID))
	require.NoError(t, err, "a failing topic save must not abort the sweep")
	assert.True(t, f.topics.Topics[healthy.ID].Closed, "sibling topics still get closed")
}
