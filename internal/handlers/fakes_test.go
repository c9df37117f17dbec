package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return issuer
}

// fakeAccountRepo keeps accounts in a map; only what the tests need.
type fakeAccountRepo struct {
	accounts map[int64]*models.Account
	nextID   int64
}

func newFakeAccountRepo(seed ...*models.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: map[int64]*models.Account{}, nextID: 1}
	for _, a := range seed {
		if a.ID == 0 {
			a.ID = r.nextID
		}
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) Create(_ context.Context, a *models.Account) error {
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return store.ErrEmailTaken
		}
	}
	a.ID = r.nextID
	r.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *fakeAccountRepo) List(_ context.Context) ([]models.Account, error) {
	var out []models.Account
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateRole(_ context.Context, id int64, role models.Role) (*models.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a.Role = role
	a.UpdatedAt = time.Now()
	return a, nil
}

func (r *fakeAccountRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

// fakeTaskRepo mirrors the ownership scoping of the real repository.
type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	nextID int64
}

func newFakeTaskRepo(seed ...*models.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[int64]*models.Task{}, nextID: 1}
	for _, task := range seed {
		if task.ID == 0 {
			task.ID = r.nextID
		}
		if task.ID >= r.nextID {
			r.nextID = task.ID + 1
		}
		r.tasks[task.ID] = task
	}
	return r
}

func (r *fakeTaskRepo) Create(_ context.Context, t *models.Task) error {
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, accountID, id int64) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.AccountID != accountID {
		return nil, store.ErrNotFound
	}
	return t, nil
}

func (r *fakeTaskRepo) List(_ context.Context, accountID int64, f store.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, t := range r.tasks {
		if t.AccountID != accountID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *models.Task) error {
	existing, ok := r.tasks[t.ID]
	if !ok || existing.AccountID != t.AccountID {
		return store.ErrNotFound
	}
	r.tasks[t.ID] = t
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, accountID, id int64, status models.TaskStatus) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.AccountID != accountID {
		return nil, store.ErrNotFound
	}
	t.Status = status
	return t, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, accountID, id int64) error {
	t, ok := r.tasks[id]
	if !ok || t.AccountID != accountID {
		return store.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeStatsRepo struct {
	stats *store.Stats
}

func (r *fakeStatsRepo) Collect(_ context.Context) (*store.Stats, error) {
	return r.stats, nil
}
