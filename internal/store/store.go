// Package store holds the repositories backing the API. There is exactly one
// production implementation per repository, backed by Postgres through sqlx.
package store

import (
	"context"
	"errors"

	"github.com/cleantask/cleantask-api/internal/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
)

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
}

// TaskFilter narrows List; zero values mean no constraint.
type TaskFilter struct {
	Status   models.TaskStatus
	Priority models.TaskPriority
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, accountID, id int64) (*models.Task, error)
	List(ctx context.Context, accountID int64, f TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) error
	UpdateStatus(ctx context.Context, accountID, id int64, status models.TaskStatus) (*models.Task, error)
	Delete(ctx context.Context, accountID, id int64) error
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	AccountsByRole  map[models.Role]int64         `json:"accounts_by_role"`
	TasksByStatus   map[models.TaskStatus]int64   `json:"tasks_by_status"`
	TasksByPriority map[models.TaskPriority]int64 `json:"tasks_by_priority"`
}

type StatsRepository interface {
	Collect(ctx context.Context) (*Stats, error)
}
