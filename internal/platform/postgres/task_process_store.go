package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/recapd/recap-api/internal/domain"
	"github.com/recapd/recap-api/internal/platform/logger"
	"github.com/recapd/recap-api/internal/store"
)

// taskProcessColumns is the column list shared by every task process query.
const taskProcessColumns = "id, entity_id, customer_id, type, status, error_msg, scheduled_to, process_at, created_at"

// PostgresTaskProcessStore implements store.TaskProcessStore using PostgreSQL.
type PostgresTaskProcessStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskProcessStore creates a new PostgresTaskProcessStore.
func NewPostgresTaskProcessStore(db store.DBTX, log *slog.Logger) *PostgresTaskProcessStore {
	return &PostgresTaskProcessStore{
		db:     db,
		logger: log,
	}
}

// Save persists the given task revision, inserting or replacing by ID.
// Replace-on-write keeps the store free of partial updates: callers always
// hand over a complete task value.
func (s *PostgresTaskProcessStore) Save(ctx context.Context, tp domain.TaskProcess) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tp.Validate(); err != nil {
		return fmt.Errorf("invalid task process: %w", err)
	}

	query := `
		INSERT INTO task_processes (` + taskProcessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			error_msg = EXCLUDED.error_msg,
			scheduled_to = EXCLUDED.scheduled_to,
			process_at = EXCLUDED.process_at
	`

	_, err := s.db.ExecContext(ctx, query,
		tp.ID,
		tp.EntityID,
		tp.CustomerID,
		tp.Type,
		tp.Status,
		tp.ErrorMsg,
		tp.ScheduledTo,
		tp.ProcessAt,
		tp.CreatedAt,
	)
	if err != nil {
		log.Error("failed to save task process",
			"task_id", tp.ID,
			"task_type", tp.Type,
			"error", err)
		return fmt.Errorf("failed to save task process: %w", err)
	}

	return nil
}

// FindPendingByType returns up to limit due tasks of the given type, oldest
// first. Tasks scheduled in the future are left for a later run.
func (s *PostgresTaskProcessStore) FindPendingByType(
	ctx context.Context,
	taskType domain.TaskProcessType,
	limit int,
) ([]domain.TaskProcess, error) {
	query := `
		SELECT ` + taskProcessColumns + `
		FROM task_processes
		WHERE type = $1
		  AND status = $2
		  AND (scheduled_to IS NULL OR scheduled_to <= now())
		ORDER BY created_at ASC
		LIMIT $3
	`

	return s.queryTaskProcesses(ctx, query, taskType, domain.TaskStatusPending, limit)
}

// FindByEntityIDAndType returns all tasks referencing the given entity with
// the given type, regardless of status.
func (s *PostgresTaskProcessStore) FindByEntityIDAndType(
	ctx context.Context,
	entityID uuid.UUID,
	taskType domain.TaskProcessType,
) ([]domain.TaskProcess, error) {
	query := `
		SELECT ` + taskProcessColumns + `
		FROM task_processes
		WHERE entity_id = $1 AND type = $2
		ORDER BY created_at DESC
	`

	return s.queryTaskProcesses(ctx, query, entityID, taskType)
}

// FindFailed returns all tasks currently in the failed state.
func (s *PostgresTaskProcessStore) FindFailed(ctx context.Context) ([]domain.TaskProcess, error) {
	query := `
		SELECT ` + taskProcessColumns + `
		FROM task_processes
		WHERE status = $1
		ORDER BY created_at ASC
	`

	return s.queryTaskProcesses(ctx, query, domain.TaskStatusFailed)
}

// Search returns tasks matching the given criteria, newest first. Zero-value
// criteria fields are ignored.
func (s *PostgresTaskProcessStore) Search(
	ctx context.Context,
	criteria store.TaskProcessSearchCriteria,
) ([]domain.TaskProcess, error) {
	query := `SELECT ` + taskProcessColumns + ` FROM task_processes WHERE 1=1`
	var args []any

	if criteria.CustomerID != uuid.Nil {
		args = append(args, criteria.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if criteria.Type != "" {
		args = append(args, criteria.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if criteria.Status != "" {
		args = append(args, criteria.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if criteria.DateFrom != nil {
		args = append(args, *criteria.DateFrom)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if criteria.DateTo != nil {
		args = append(args, *criteria.DateTo)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	return s.queryTaskProcesses(ctx, query, args...)
}

// queryTaskProcesses runs a query returning task process rows and scans them.
func (s *PostgresTaskProcessStore) queryTaskProcesses(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.TaskProcess, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query task processes", "error", err)
		return nil, fmt.Errorf("failed to query task processes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.TaskProcess
	for rows.Next() {
		tp, err := scanTaskProcess(rows)
		if err != nil {
			log.Error("failed to scan task process row", "error", err)
			return nil, fmt.Errorf("failed to scan task process row: %w", err)
		}
		tasks = append(tasks, tp)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task process rows", "error", err)
		return nil, fmt.Errorf("error iterating task process rows: %w", err)
	}

	return tasks, nil
}

// scanTaskProcess scans a single row in taskProcessColumns order.
func scanTaskProcess(rows *sql.Rows) (domain.TaskProcess, error) {
	var (
		tp          domain.TaskProcess
		scheduledTo sql.NullTime
		processAt   sql.NullTime
	)

	err := rows.Scan(
		&tp.ID,
		&tp.EntityID,
		&tp.CustomerID,
		&tp.Type,
		&tp.Status,
		&tp.ErrorMsg,
		&scheduledTo,
		&processAt,
		&tp.CreatedAt,
	)
	if err != nil {
		return domain.TaskProcess{}, err
	}

	if scheduledTo.Valid {
		t := scheduledTo.Time.UTC()
		tp.ScheduledTo = &t
	}
	if processAt.Valid {
		t := processAt.Time.UTC()
		tp.ProcessAt = &t
	}
	tp.CreatedAt = tp.CreatedAt.UTC()

	return tp, nil
}

// ensure the interface is satisfied
var _ store.TaskProcessStore = (*PostgresTaskProcessStore)(nil)
