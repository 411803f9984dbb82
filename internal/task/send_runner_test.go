package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/email"
)

type sendFixture struct {
	histories *MockTopicHistoryStore
	topics    *MockTopicStore
	customers *MockCustomerStore
	sender    *MockSender
	runner    *SendTopicHistoryRunner
}

func newSendFixture() *sendFixture {
	histories := NewMockTopicHistoryStore()
	topics := NewMockTopicStore()
	customers := NewMockCustomerStore()
	sender := &MockSender{}
	return &sendFixture{
		histories: histories,
		topics:    topics,
		customers: customers,
		sender:    sender,
		runner:    NewSendTopicHistoryRunner(histories, topics, customers, sender, newTestLogger()),
	}
}

func TestSendRunner_Success(t *testing.T) {
	t.Parallel()

	f := newSendFixture()

	customer, err := domain.NewCustomer("reader@example.com", domain.TierStandard)
	require.NoError(t, err)
	f.customers.Customers[customer.ID] = customer

	topic, err := domain.NewTopic(customer.ID, "Queueing theory")
	require.NoError(t, err)
	f.topics.Topics[topic.ID] = topic

	history, err := domain.NewTopicHistory(topic.ID, "Little's law relates occupancy to throughput.")
	require.NoError(t, err)
	f.histories.Histories[history.ID] = history

	tp, err := domain.NewTaskProcess(history.ID, customer.ID, domain.TaskTypeSendTopicHistory, nil)
	require.NoError(t, err)

	err = f.runner.Execute(context.Background(), tp)
	require.NoError(t, err)

	require.Len(t, f.sender.Sent, 1)
	msg := f.sender.Sent[0]
	assert.Equal(t, "reader@example.com", msg.To)
	assert.Equal(t, "Queueing theory", msg.TopicSubject)
	assert.Equal(t, history.Content, msg.Content)
}

func TestSendRunner_MissingLinksAreHardFailures(t *testing.T) {
	t.Parallel()

	t.Run("history missing", func(t *testing.T) {
		t.Parallel()
		f := newSendFixture()

		tp, err := domain.NewTaskProcess(uuid.New(), uuid.New(), domain.TaskTypeSendTopicHistory, nil)
		require.NoError(t, err)

		err = f.runner.Execute(context.Background(), tp)
		assert.ErrorIs(t, err, domain.ErrTopicHistoryNotFound)
		assert.Empty(t, f.sender.Sent)
	})

	t.Run("topic missing", func(t *testing.T) {
		t.Parallel()
		f := newSendFixture()

		history, err := domain.NewTopicHistory(uuid.New(), "orphan content")
		require.NoError(t, err)
		f.histories.Histories[history.ID] = history

		tp, err := domain.NewTaskProcess(history.ID, uuid.New(), domain.TaskTypeSendTopicHistory, nil)
		require.NoError(t, err)

		err = f.runner.Execute(context.Background(), tp)
		assert.ErrorIs(t, err, domain.ErrTopicNotFound)
	})

	t.Run("customer missing", func(t *testing.T) {
		t.Parallel()
		f := newSendFixture()

		topic, err := domain.NewTopic(uuid.New(), "Ownerless subject")
		require.NoError(t, err)
		f.topics.Topics[topic.ID] = topic

		history, err := domain.NewTopicHistory(topic.ID, "content")
		require.NoError(t, err)
		f.histories.Histories[history.ID] = history

		tp, err := domain.NewTaskProcess(history.ID, topic.CustomerID, domain.TaskTypeSendTopicHistory, nil)
		require.NoError(t, err)

		err = f.runner.Execute(context.Background(), tp)
		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestSendRunner_SenderFailurePropagates(t *testing.T) {
	t.Parallel()

	f := newSendFixture()

	customer, err := domain.NewCustomer("reader@example.com", domain.TierBasic)
	require.NoError(t, err)
	f.customers.Customers[customer.ID] = customer

	topic, err := domain.NewTopic(customer.ID, "SMTP woes")
	require.NoError(t, err)
	f.topics.Topics[topic.ID] = topic

	history, err := domain.NewTopicHistory(topic.ID, "content")
	require.NoError(t, err)
	f.histories.Histories[history.ID] = history

	f.sender.SendFn = func(ctx context.Context, msg email.Message) error {
		return errors.New("relay refused")
	}

	tp, err := domain.NewTaskProcess(history.ID, customer.ID, domain.TaskTypeSendTopicHistory, nil)
	require.NoError(t, err)

	err = f.runner.Execute(context.Background(), tp)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "relay refused")
}
