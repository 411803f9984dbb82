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

// PostgresTopicHistoryStore implements store.TopicHistoryStore using PostgreSQL.
type PostgresTopicHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicHistoryStore creates a new PostgresTopicHistoryStore.
func NewPostgresTopicHistoryStore(db store.DBTX, log *slog.Logger) *PostgresTopicHistoryStore {
	return &PostgresTopicHistoryStore{
		db:     db,
		logger: log,
	}
}

// FindByID returns the history with the given ID, or
// domain.ErrTopicHistoryNotFound if no such history exists.
func (s *PostgresTopicHistoryStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.TopicHistory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic_id, content, created_at
		FROM topic_histories
		WHERE id = $1
	`

	var history domain.TopicHistory
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&history.ID,
		&history.TopicID,
		&history.Content,
		&history.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTopicHistoryNotFound
		}
		log.Error("failed to query topic history", "history_id", id, "error", err)
		return nil, fmt.Errorf("failed to query topic history: %w", err)
	}

	history.CreatedAt = history.CreatedAt.UTC()
	return &history, nil
}

// FindByTopicID returns all histories of the given topic, newest first.
// Prompt construction relies on this order to pick the most recent context.
func (s *PostgresTopicHistoryStore) FindByTopicID(ctx context.Context, topicID uuid.UUID) ([]*domain.TopicHistory, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, topic_id, content, created_at
		FROM topic_histories
		WHERE topic_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, topicID)
	if err != nil {
		log.Error("failed to query topic histories", "topic_id", topicID, "error", err)
		return nil, fmt.Errorf("failed to query topic histories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var histories []*domain.TopicHistory
	for rows.Next() {
		var history domain.TopicHistory
		err := rows.Scan(
			&history.ID,
			&history.TopicID,
			&history.Content,
			&history.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan topic history row", "topic_id", topicID, "error", err)
			return nil, fmt.Errorf("failed to scan topic history row: %w", err)
		}
		history.CreatedAt = history.CreatedAt.UTC()
		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating topic history rows", "topic_id", topicID, "error", err)
		return nil, fmt.Errorf("error iterating topic history rows: %w", err)
	}

	return histories, nil
}

// Save persists a new topic history.
func (s *PostgresTopicHistoryStore) Save(ctx context.Context, history *domain.TopicHistory) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := history.Validate(); err != nil {
		return fmt.Errorf("invalid topic history: %w", err)
	}

	query := `
		INSERT INTO topic_histories (id, topic_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.db.ExecContext(ctx, query,
		history.ID,
		history.TopicID,
		history.Content,
		history.CreatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrTopicNotFound, err)
		}
		log.Error("failed to save topic history", "history_id", history.ID, "error", err)
		return fmt.Errorf("failed to save topic history: %w", err)
	}

	return nil
}

var _ store.TopicHistoryStore = (*PostgresTopicHistoryStore)(nil)
