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

// PostgresCustomerStore implements store.CustomerStore using PostgreSQL.
type PostgresCustomerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCustomerStore creates a new PostgresCustomerStore.
func NewPostgresCustomerStore(db store.DBTX, log *slog.Logger) *PostgresCustomerStore {
	return &PostgresCustomerStore{
		db:     db,
		logger: log,
	}
}

// FindByID returns the customer with the given ID, or
// domain.ErrCustomerNotFound if no such customer exists.
func (s *PostgresCustomerStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, tier, created_at
		FROM customers
		WHERE id = $1
	`

	var customer domain.Customer
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Email,
		&customer.Tier,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		log.Error("failed to query customer", "customer_id", id, "error", err)
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	customer.CreatedAt = customer.CreatedAt.UTC()
	return &customer, nil
}

var _ store.CustomerStore = (*PostgresCustomerStore)(nil)
