package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/middleware"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
)

// adminRig mounts the admin surface behind the real gate, so these tests
// exercise the full request path: bearer parsing, role check, self-guards.
type adminRig struct {
	router   *chi.Mux
	issuer   *auth.Issuer
	accounts *fakeAccountRepo
	admin    *models.Account
	regular  *models.Account
}

func newAdminRig(t *testing.T) *adminRig {
	t.Helper()

	hasher := auth.NewHasher(10)
	issuer := testIssuer(t)
	log := testLogger()

	admin := seedAccount(t, hasher, "admin@cleantask.com", "Abcdefgh1", models.RoleAdmin)
	regular := seedAccount(t, hasher, "ana@example.com", "Abcdefgh1", models.RoleUser)
	accounts := newFakeAccountRepo(admin, regular)

	stats := &fakeStatsRepo{stats: &store.Stats{
		AccountsByRole:  map[models.Role]int64{models.RoleAdmin: 1, models.RoleUser: 1},
		TasksByStatus:   map[models.TaskStatus]int64{models.TaskPending: 2},
		TasksByPriority: map[models.TaskPriority]int64{models.PriorityHigh: 1},
	}}

	h := NewAdminHandler(accounts, stats, hasher, log)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(issuer, log))
		r.Use(middleware.RequireRole(models.RoleAdmin, log))

		r.Get("/admin/accounts", h.ListAccounts)
		r.Post("/admin/accounts", h.CreateAccount)
		r.Patch("/admin/accounts/{id}/role", h.UpdateRole)
		r.Delete("/admin/accounts/{id}", h.DeleteAccount)
		r.Get("/admin/stats", h.Stats)
	})

	return &adminRig{router: r, issuer: issuer, accounts: accounts, admin: admin, regular: regular}
}

func (rig *adminRig) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	rig.router.ServeHTTP(w, req)
	return w
}

func (rig *adminRig) tokenFor(t *testing.T, a *models.Account) string {
	t.Helper()
	token, _, err := rig.issuer.Issue(a.ID, a.Role)
	require.NoError(t, err)
	return token
}

func TestAdminRoutes_RequireAdminToken(t *testing.T) {
	rig := newAdminRig(t)

	t.Run("no header is 401", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/admin/accounts", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("regular token is 403", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/admin/accounts", rig.tokenFor(t, rig.regular), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin token is 200", func(t *testing.T) {
		w := rig.do(t, http.MethodGet, "/admin/accounts", rig.tokenFor(t, rig.admin), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "password_hash")
	})
}

func TestAdminUpdateRole(t *testing.T) {
	t.Run("promoting another account succeeds", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodPatch,
			pathForRole(rig.regular.ID), rig.tokenFor(t, rig.admin),
			map[string]string{"role": "admin"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleAdmin, rig.accounts.accounts[rig.regular.ID].Role)
	})

	t.Run("self-demotion is rejected with 403", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodPatch,
			pathForRole(rig.admin.ID), rig.tokenFor(t, rig.admin),
			map[string]string{"role": "user"})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "own role")
		// the role stayed untouched
		assert.Equal(t, models.RoleAdmin, rig.accounts.accounts[rig.admin.ID].Role)
	})

	t.Run("reasserting own admin role is a no-op success", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodPatch,
			pathForRole(rig.admin.ID), rig.tokenFor(t, rig.admin),
			map[string]string{"role": "admin"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown role value is 400", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodPatch,
			pathForRole(rig.regular.ID), rig.tokenFor(t, rig.admin),
			map[string]string{"role": "superuser"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("absent target is 404", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodPatch,
			"/admin/accounts/9999/role", rig.tokenFor(t, rig.admin),
			map[string]string{"role": "admin"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminDeleteAccount(t *testing.T) {
	t.Run("deleting another account succeeds", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodDelete,
			pathForAccount(rig.regular.ID), rig.tokenFor(t, rig.admin), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		_, ok := rig.accounts.accounts[rig.regular.ID]
		assert.False(t, ok)
	})

	t.Run("self-deletion is rejected with 403", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodDelete,
			pathForAccount(rig.admin.ID), rig.tokenFor(t, rig.admin), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "own account")
		_, ok := rig.accounts.accounts[rig.admin.ID]
		assert.True(t, ok)
	})

	t.Run("absent target is 404", func(t *testing.T) {
		rig := newAdminRig(t)
		w := rig.do(t, http.MethodDelete,
			"/admin/accounts/9999", rig.tokenFor(t, rig.admin), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminCreateAccount(t *testing.T) {
	rig := newAdminRig(t)

	t.Run("with explicit role", func(t *testing.T) {
		w := rig.do(t, http.MethodPost, "/admin/accounts", rig.tokenFor(t, rig.admin), map[string]string{
			"name": "Bea", "email": "bea@example.com", "password": "Abcdefgh1", "role": "admin",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"admin"`)
	})

	t.Run("weak password is 400", func(t *testing.T) {
		w := rig.do(t, http.MethodPost, "/admin/accounts", rig.tokenFor(t, rig.admin), map[string]string{
			"name": "Cloe", "email": "cloe@example.com", "password": "abc", "role": "user",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		w := rig.do(t, http.MethodPost, "/admin/accounts", rig.tokenFor(t, rig.admin), map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "Abcdefgh1",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAdminStats(t *testing.T) {
	rig := newAdminRig(t)

	w := rig.do(t, http.MethodGet, "/admin/stats", rig.tokenFor(t, rig.admin), nil)

	require.Equal(t, http.StatusOK, w.Code)

	var stats store.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.AccountsByRole[models.RoleAdmin])
	assert.Equal(t, int64(2), stats.TasksByStatus[models.TaskPending])
}

func pathForRole(id int64) string {
	return pathForAccount(id) + "/role"
}

func pathForAccount(id int64) string {
	return "/admin/accounts/" + strconv.FormatInt(id, 10)
}
