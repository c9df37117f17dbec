package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleantask/cleantask-api/internal/models"
)

type PostgresTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresTaskRepository(db *sqlx.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (account_id, title, description, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		t.AccountID, t.Title, t.Description, t.Status, t.Priority, t.DueDate).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: create task: %w", err)
	}
	return nil
}

// GetByID is always scoped to the owning account; a foreign task reads as
// absent.
func (r *PostgresTaskRepository) GetByID(ctx context.Context, accountID, id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `
		SELECT id, account_id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks
		WHERE id=$1 AND account_id=$2
	`, id, accountID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get task: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, accountID int64, f TaskFilter) ([]models.Task, error) {
	query := `
		SELECT id, account_id, title, description, status, priority, due_date, created_at, updated_at
		FROM tasks
		WHERE account_id=$1
	`
	args := []interface{}{accountID}

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		query += fmt.Sprintf(" AND priority=$%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("store: list tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) Update(ctx context.Context, t *models.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title=$1, description=$2, status=$3, priority=$4, due_date=$5, updated_at=NOW()
		WHERE id=$6 AND account_id=$7
	`, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ID, t.AccountID)
	if err != nil {
		return fmt.Errorf("store: update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresTaskRepository) UpdateStatus(ctx context.Context, accountID, id int64, status models.TaskStatus) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRowxContext(ctx, `
		UPDATE tasks
		SET status=$1, updated_at=NOW()
		WHERE id=$2 AND account_id=$3
		RETURNING id, account_id, title, description, status, priority, due_date, created_at, updated_at
	`, status, id, accountID).StructScan(&t)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update task status: %w", err)
	}
	return &t, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, accountID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1 AND account_id=$2`, id, accountID)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
