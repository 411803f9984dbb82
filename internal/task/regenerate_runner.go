package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/store"
)

// historyCountFanOut bounds how many history-count lookups run in parallel,
// to avoid overwhelming the store with a burst of read queries.
const historyCountFanOut = 5

// generationWindow is the rolling window the tier generation quota applies to.
const generationWindow = 24 * time.Hour

// RegenerateTopicHistoryRunner is the tier-based rate limiter. For the
// customer a task references it counts recent generation tasks against the
// tier quota and, if headroom remains, schedules new generation tasks for
// the customer's open topics, fewest-histories-first.
type RegenerateTopicHistoryRunner struct {
	customers store.CustomerStore
	topics    store.TopicStore
	histories store.TopicHistoryStore
	tasks     store.TaskProcessStore
	logger    *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewRegenerateTopicHistoryRunner creates a new RegenerateTopicHistoryRunner.
func NewRegenerateTopicHistoryRunner(
	customers store.CustomerStore,
	topics store.TopicStore,
	histories store.TopicHistoryStore,
	tasks store.TaskProcessStore,
	logger *slog.Logger,
) *RegenerateTopicHistoryRunner {
	return &RegenerateTopicHistoryRunner{
		customers: customers,
		topics:    topics,
		histories: histories,
		tasks:     tasks,
		logger:    logger.With("runner", "regenerate_topic_histories"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// topicLoad pairs a topic with its current history count.
type topicLoad struct {
	topic *domain.Topic
	count int
}

// Execute schedules up to (quota - pending) generation tasks for the
// customer referenced by tp.EntityID. New tasks are scheduled one window
// after the customer's last delivery, so the next wave follows the cadence
// of the last email rather than the last generation.
func (r *RegenerateTopicHistoryRunner) Execute(ctx context.Context, tp domain.TaskProcess) error {
	logger := r.logger.With("task_id", tp.ID, "customer_id", tp.EntityID)

	customer, err := r.customers.FindByID(ctx, tp.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load customer %s: %w", tp.EntityID, err)
	}

	maxPerWindow := domain.MaxGenerationsPer24h(customer.Tier)

	now := r.now()
	windowStart := now.Add(-generationWindow)
	recent, err := r.tasks.Search(ctx, store.TaskProcessSearchCriteria{
		CustomerID: customer.ID,
		Type:       domain.TaskTypeGenerateTopicHistory,
		DateFrom:   &windowStart,
	})
	if err != nil {
		return fmt.Errorf("failed to search recent generation tasks: %w", err)
	}

	pendingCount := 0
	for _, t := range recent {
		if t.Status == domain.TaskStatusPending {
			pendingCount++
		}
	}

	if pendingCount >= maxPerWindow {
		logger.Info("generation quota exhausted",
			"tier", customer.Tier,
			"pending", pendingCount,
			"total_in_window", len(recent),
			"max_per_window", maxPerWindow)
		return nil
	}

	needed := maxPerWindow - pendingCount

	allTopics, err := r.topics.FindByCustomerID(ctx, customer.ID)
	if err != nil {
		return fmt.Errorf("failed to load topics for customer %s: %w", customer.ID, err)
	}

	var open []*domain.Topic
	for _, t := range allTopics {
		if !t.Closed {
			open = append(open, t)
		}
	}

	loads, err := r.countHistories(ctx, open)
	if err != nil {
		return fmt.Errorf("failed to count topic histories: %w", err)
	}

	// Topics at the ceiling get no further generations; the rest are ranked
	// fewest-histories-first so neglected topics catch up.
	eligible := loads[:0]
	for _, l := range loads {
		if l.count < domain.TopicHistoryCeiling {
			eligible = append(eligible, l)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].count < eligible[j].count
	})

	if len(eligible) > needed {
		eligible = eligible[:needed]
	}

	scheduledTo := r.nextWaveAt(ctx, customer.ID, now)

	for _, l := range eligible {
		gen, err := domain.NewTaskProcess(
			l.topic.ID,
			customer.ID,
			domain.TaskTypeGenerateTopicHistory,
			&scheduledTo,
		)
		if err != nil {
			logger.Error("failed to build generation task", "topic_id", l.topic.ID, "error", err)
			continue
		}
		if err := r.tasks.Save(ctx, gen); err != nil {
			logger.Error("failed to schedule generation task", "topic_id", l.topic.ID, "error", err)
			continue
		}
		logger.Info("generation scheduled",
			"topic_id", l.topic.ID,
			"history_count", l.count,
			"scheduled_to", scheduledTo)
	}

	return nil
}

// countHistories fetches the history count of every topic with bounded
// parallelism. The fan-out is read-only; scheduling stays sequential.
func (r *RegenerateTopicHistoryRunner) countHistories(
	ctx context.Context,
	topics []*domain.Topic,
) ([]topicLoad, error) {
	loads := make([]topicLoad, len(topics))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyCountFanOut)

	for i, topic := range topics {
		g.Go(func() error {
			histories, err := r.histories.FindByTopicID(gctx, topic.ID)
			if err != nil {
				return fmt.Errorf("topic %s: %w", topic.ID, err)
			}
			mu.Lock()
			loads[i] = topicLoad{topic: topic, count: len(histories)}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return loads, nil
}

// nextWaveAt returns when the next generation wave should run: one window
// after the customer's most recent send task, or one window from now when
// the customer has never been sent anything. A lookup failure falls back to
// now plus one window rather than blocking the wave.
func (r *RegenerateTopicHistoryRunner) nextWaveAt(
	ctx context.Context,
	customerID uuid.UUID,
	now time.Time,
) time.Time {
	sends, err := r.tasks.Search(ctx, store.TaskProcessSearchCriteria{
		CustomerID: customerID,
		Type:       domain.TaskTypeSendTopicHistory,
	})
	if err != nil {
		r.logger.Error("failed to look up last send task", "customer_id", customerID, "error", err)
		return now.Add(generationWindow)
	}

	if len(sends) == 0 {
		return now.Add(generationWindow)
	}

	// Search returns newest first.
	return sends[0].CreatedAt.Add(generationWindow)
}
