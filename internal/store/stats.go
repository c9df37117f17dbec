package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleantask/cleantask-api/internal/models"
)

type PostgresStatsRepository struct {
	db *sqlx.DB
}

func NewPostgresStatsRepository(db *sqlx.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

func (r *PostgresStatsRepository) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		AccountsByRole:  map[models.Role]int64{},
		TasksByStatus:   map[models.TaskStatus]int64{},
		TasksByPriority: map[models.TaskPriority]int64{},
	}

	type bucket struct {
		Key   string `db:"key"`
		Count int64  `db:"count"`
	}

	var rows []bucket
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT role AS key, COUNT(*) AS count FROM accounts GROUP BY role
	`); err != nil {
		return nil, fmt.Errorf("store: account stats: %w", err)
	}
	for _, b := range rows {
		stats.AccountsByRole[models.Role(b.Key)] = b.Count
	}

	rows = rows[:0]
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT status AS key, COUNT(*) AS count FROM tasks GROUP BY status
	`); err != nil {
		return nil, fmt.Errorf("store: task status stats: %w", err)
	}
	for _, b := range rows {
		stats.TasksByStatus[models.TaskStatus(b.Key)] = b.Count
	}

	rows = rows[:0]
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT priority AS key, COUNT(*) AS count FROM tasks GROUP BY priority
	`); err != nil {
		return nil, fmt.Errorf("store: task priority stats: %w", err)
	}
	for _, b := range rows {
		stats.TasksByPriority[models.TaskPriority(b.Key)] = b.Count
	}

	return stats, nil
}
