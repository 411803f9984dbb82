package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/email"
	"github.com/recapd/recap-api/internal/store"
)

// MockTaskProcessStore implements store.TaskProcessStore for testing.
// Behavior is backed by an in-memory map and can be overridden per method
// via the Fn fields.
type MockTaskProcessStore struct {
	mu        sync.RWMutex
	tasks     map[uuid.UUID]domain.TaskProcess
	order     map[uuid.UUID]int
	seq       int
	SaveCalls int

	SaveFn        func(ctx context.Context, tp domain.TaskProcess) error
	FindPendingFn func(ctx context.Context, taskType domain.TaskProcessType, limit int) ([]domain.TaskProcess, error)
	FindFailedFn  func(ctx context.Context) ([]domain.TaskProcess, error)
	SearchFn      func(ctx context.Context, criteria store.TaskProcessSearchCriteria) ([]domain.TaskProcess, error)
}

// NewMockTaskProcessStore creates an empty MockTaskProcessStore.
func NewMockTaskProcessStore() *MockTaskProcessStore {
	return &MockTaskProcessStore{
		tasks: make(map[uuid.UUID]domain.TaskProcess),
		order: make(map[uuid.UUID]int),
	}
}

// Seed inserts a task without counting it as a Save call.
func (s *MockTaskProcessStore) Seed(tps ...domain.TaskProcess) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tp := range tps {
		if _, ok := s.order[tp.ID]; !ok {
			s.order[tp.ID] = s.seq
			s.seq++
		}
		s.tasks[tp.ID] = tp
	}
}

// Get returns the stored revision of the task with the given ID.
func (s *MockTaskProcessStore) Get(id uuid.UUID) (domain.TaskProcess, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tp, ok := s.tasks[id]
	return tp, ok
}

// All returns every stored task in insertion order.
func (s *MockTaskProcessStore) All() []domain.TaskProcess {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TaskProcess, 0, len(s.tasks))
	for _, tp := range s.tasks {
		out = append(out, tp)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

// Save implements store.TaskProcessStore.
func (s *MockTaskProcessStore) Save(ctx context.Context, tp domain.TaskProcess) error {
	s.mu.Lock()
	s.SaveCalls++
	s.mu.Unlock()

	if s.SaveFn != nil {
		return s.SaveFn(ctx, tp)
	}

	s.Seed(tp)
	return nil
}

// FindPendingByType implements store.TaskProcessStore.
func (s *MockTaskProcessStore) FindPendingByType(
	ctx context.Context,
	taskType domain.TaskProcessType,
	limit int,
) ([]domain.TaskProcess, error) {
	if s.FindPendingFn != nil {
		return s.FindPendingFn(ctx, taskType, limit)
	}

	now := time.Now().UTC()
	due := s.filter(func(tp domain.TaskProcess) bool {
		return tp.Type == taskType && tp.IsDue(now)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// FindByEntityIDAndType implements store.TaskProcessStore.
func (s *MockTaskProcessStore) FindByEntityIDAndType(
	ctx context.Context,
	entityID uuid.UUID,
	taskType domain.TaskProcessType,
) ([]domain.TaskProcess, error) {
	return s.filter(func(tp domain.TaskProcess) bool {
		return tp.EntityID == entityID && tp.Type == taskType
	}), nil
}

// FindFailed implements store.TaskProcessStore.
func (s *MockTaskProcessStore) FindFailed(ctx context.Context) ([]domain.TaskProcess, error) {
	if s.FindFailedFn != nil {
		return s.FindFailedFn(ctx)
	}
	return s.filter(func(tp domain.TaskProcess) bool {
		return tp.Status == domain.TaskStatusFailed
	}), nil
}

// Search implements store.TaskProcessStore. Results are newest first.
func (s *MockTaskProcessStore) Search(
	ctx context.Context,
	criteria store.TaskProcessSearchCriteria,
) ([]domain.TaskProcess, error) {
	if s.SearchFn != nil {
		return s.SearchFn(ctx, criteria)
	}

	matches := s.filter(func(tp domain.TaskProcess) bool {
		if criteria.CustomerID != uuid.Nil && tp.CustomerID != criteria.CustomerID {
			return false
		}
		if criteria.Type != "" && tp.Type != criteria.Type {
			return false
		}
		if criteria.Status != "" && tp.Status != criteria.Status {
			return false
		}
		if criteria.DateFrom != nil && tp.CreatedAt.Before(*criteria.DateFrom) {
			return false
		}
		if criteria.DateTo != nil && tp.CreatedAt.After(*criteria.DateTo) {
			return false
		}
		return true
	})

	// Reverse insertion order approximates newest first.
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	return matches, nil
}

// filter returns stored tasks matching the predicate, in insertion order.
func (s *MockTaskProcessStore) filter(keep func(domain.TaskProcess) bool) []domain.TaskProcess {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TaskProcess
	for _, tp := range s.tasks {
		if keep(tp) {
			out = append(out, tp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out
}

// MockCustomerStore implements store.CustomerStore for testing.
type MockCustomerStore struct {
	Customers map[uuid.UUID]*domain.Customer
}

// NewMockCustomerStore creates an empty MockCustomerStore.
func NewMockCustomerStore() *MockCustomerStore {
	return &MockCustomerStore{Customers: make(map[uuid.UUID]*domain.Customer)}
}

// FindByID implements store.CustomerStore.
func (s *MockCustomerStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, ok := s.Customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return c, nil
}

// MockTopicStore implements store.TopicStore for testing.
type MockTopicStore struct {
	mu     sync.RWMutex
	Topics map[uuid.UUID]*domain.Topic
	SaveFn func(ctx context.Context, topic *domain.Topic) error
}

// NewMockTopicStore creates an empty MockTopicStore.
func NewMockTopicStore() *MockTopicStore {
	return &MockTopicStore{Topics: make(map[uuid.UUID]*domain.Topic)}
}

// FindByID implements store.TopicStore.
func (s *MockTopicStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.Topics[id]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	return t, nil
}

// FindByCustomerID implements store.TopicStore.
func (s *MockTopicStore) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Topic
	for _, t := range s.Topics {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Save implements store.TopicStore.
func (s *MockTopicStore) Save(ctx context.Context, topic *domain.Topic) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, topic)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Topics[topic.ID] = topic
	return nil
}

// MockTopicHistoryStore implements store.TopicHistoryStore for testing.
type MockTopicHistoryStore struct {
	mu        sync.RWMutex
	Histories map[uuid.UUID]*domain.TopicHistory
	FindFn    func(ctx context.Context, topicID uuid.UUID) ([]*domain.TopicHistory, error)
	SaveFn    func(ctx context.Context, history *domain.TopicHistory) error
}

// NewMockTopicHistoryStore creates an empty MockTopicHistoryStore.
func NewMockTopicHistoryStore() *MockTopicHistoryStore {
	return &MockTopicHistoryStore{Histories: make(map[uuid.UUID]*domain.TopicHistory)}
}

// FindByID implements store.TopicHistoryStore.
func (s *MockTopicHistoryStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.TopicHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.Histories[id]
	if !ok {
		return nil, domain.ErrTopicHistoryNotFound
	}
	return h, nil
}

// FindByTopicID implements store.TopicHistoryStore. Results are newest first.
func (s *MockTopicHistoryStore) FindByTopicID(
	ctx context.Context,
	topicID uuid.UUID,
) ([]*domain.TopicHistory, error) {
	if s.FindFn != nil {
		return s.FindFn(ctx, topicID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TopicHistory
	for _, h := range s.Histories {
		if h.TopicID == topicID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Save implements store.TopicHistoryStore.
func (s *MockTopicHistoryStore) Save(ctx context.Context, history *domain.TopicHistory) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, history)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Histories[history.ID] = history
	return nil
}

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	GenerateFn func(ctx context.Context, prompt string, customerID uuid.UUID) (string, error)
	Prompts    []string
}

// Generate implements generation.Generator.
func (g *MockGenerator) Generate(ctx context.Context, prompt string, customerID uuid.UUID) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	if g.GenerateFn != nil {
		return g.GenerateFn(ctx, prompt, customerID)
	}
	return "generated content", nil
}

// MockSender implements email.Sender for testing.
type MockSender struct {
	SendFn func(ctx context.Context, msg email.Message) error
	Sent   []email.Message
}

// Send implements email.Sender.
func (s *MockSender) Send(ctx context.Context, msg email.Message) error {
	if s.SendFn != nil {
		return s.SendFn(ctx, msg)
	}
	s.Sent = append(s.Sent, msg)
	return nil
}
