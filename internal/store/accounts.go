package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/cleantask/cleantask-api/internal/models"
)

const uniqueViolation = "23505"

type PostgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, a.Name, a.Email, a.PasswordHash, a.Role).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("store: create account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var a models.Account
	err := r.db.GetContext(ctx, &a, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE id=$1
	`, id)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get account: %w", err)
	}
	return &a, nil
}

// GetByEmail compares case-insensitively; callers pass a normalized address
// but stored rows may predate normalization.
func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.db.GetContext(ctx, &a, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE LOWER(email)=LOWER($1)
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get account by email: %w", err)
	}
	return &a, nil
}

func (r *PostgresAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.SelectContext(ctx, &accounts, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list accounts: %w", err)
	}
	return accounts, nil
}

func (r *PostgresAccountRepository) UpdateRole(ctx context.Context, id int64, role models.Role) (*models.Account, error) {
	var a models.Account
	err := r.db.QueryRowxContext(ctx, `
		UPDATE accounts
		SET role=$1, updated_at=NOW()
		WHERE id=$2
		RETURNING id, name, email, password_hash, role, created_at, updated_at
	`, role, id).StructScan(&a)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update role: %w", err)
	}
	return &a, nil
}

func (r *PostgresAccountRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("store: delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
