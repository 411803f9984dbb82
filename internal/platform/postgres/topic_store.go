package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/platform/logger"
	"github.com/recapd/recap-api/internal/store"
)

// PostgresTopicStore implements store.TopicStore using PostgreSQL.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStore creates a new PostgresTopicStore.
func NewPostgresTopicStore(db store.DBTX, log *slog.Logger) *PostgresTopicStore {
	return &PostgresTopicStore{
		db:     db,
		logger: log,
	}
}

// FindByID returns the topic with the given ID, or domain.ErrTopicNotFound
// if no such topic exists.
func (s *PostgresTopicStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, customer_id, subject, closed, created_at, updated_at
		FROM topics
		WHERE id = $1
	`

	topic, err := scanTopicRow(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTopicNotFound
		}
		log.Error("failed to query topic", "topic_id", id, "error", err)
		return nil, fmt.Errorf("failed to query topic: %w", err)
	}

	return topic, nil
}

// FindByCustomerID returns all topics owned by the given customer, oldest
// first so fairness-sensitive callers see a stable order.
func (s *PostgresTopicStore) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, customer_id, subject, closed, created_at, updated_at
		FROM topics
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, customerID)
	if err != nil {
		log.Error("failed to query topics", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []*domain.Topic
	for rows.Next() {
		topic, err := scanTopicRow(rows)
		if err != nil {
			log.Error("failed to scan topic row", "customer_id", customerID, "error", err)
			return nil, fmt.Errorf("failed to scan topic row: %w", err)
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating topic rows", "customer_id", customerID, "error", err)
		return nil, fmt.Errorf("error iterating topic rows: %w", err)
	}

	return topics, nil
}

// Save persists topic changes, inserting or replacing by ID.
func (s *PostgresTopicStore) Save(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		return fmt.Errorf("invalid topic: %w", err)
	}

	query := `
		INSERT INTO topics (id, customer_id, subject, closed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			closed = EXCLUDED.closed,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		topic.ID,
		topic.CustomerID,
		topic.Subject,
		topic.Closed,
		topic.CreatedAt,
		topic.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrCustomerNotFound, err)
		}
		log.Error("failed to save topic", "topic_id", topic.ID, "error", err)
		return fmt.Errorf("failed to save topic: %w", err)
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTopicRow scans a topic in select-column order.
func scanTopicRow(row rowScanner) (*domain.Topic, error) {
	var topic domain.Topic
	err := row.Scan(
		&topic.ID,
		&topic.CustomerID,
		&topic.Subject,
		&topic.Closed,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	topic.CreatedAt = topic.CreatedAt.UTC()
	topic.UpdatedAt = topic.UpdatedAt.UTC()
	return &topic, nil
}

var _ store.TopicStore = (*PostgresTopicStore)(nil)
