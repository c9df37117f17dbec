package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/middleware"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
	"github.com/cleantask/cleantask-api/internal/utils"
)

// AdminHandler serves the account-management surface. Every route is mounted
// behind RequireRole(admin); the self-action guards here run after that.
type AdminHandler struct {
	accounts store.AccountRepository
	stats    store.StatsRepository
	hasher   *auth.Hasher
	log      *logrus.Logger
}

func NewAdminHandler(accounts store.AccountRepository, stats store.StatsRepository, hasher *auth.Hasher, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{accounts: accounts, stats: stats, hasher: hasher, log: log}
}

// ---------------------- LIST ----------------------

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("account listing failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	utils.JSON(w, http.StatusOK, accounts)
}

// ---------------------- CREATE ----------------------

type createAccountReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AdminHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	switch {
	case req.Name == "":
		utils.JSONError(w, http.StatusBadRequest, "name is required")
		return
	case req.Email == "":
		utils.JSONError(w, http.StatusBadRequest, "email is required")
		return
	case !utils.ValidEmail(req.Email):
		utils.JSONError(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if msg := utils.CheckPasswordStrength(req.Password); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid role value")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.WithError(err).Error("password hashing failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	account := &models.Account{
		Name:         req.Name,
		Email:        utils.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
	}

	if err := h.accounts.Create(r.Context(), account); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			utils.JSONError(w, http.StatusConflict, "email already registered")
			return
		}
		h.log.WithError(err).Error("account creation failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusCreated, account)
}

// ---------------------- PATCH ROLE ----------------------

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		utils.JSONError(w, http.StatusBadRequest, "invalid role value")
		return
	}

	// an admin demoting themselves would lock them out of this surface
	if targetID == id.AccountID && role != models.RoleAdmin {
		h.log.WithFields(logrus.Fields{"code": "SELF_DEMOTION", "account_id": id.AccountID}).Warn("self-action rejected")
		utils.JSONError(w, http.StatusForbidden, "administrators cannot change their own role")
		return
	}

	account, err := h.accounts.UpdateRole(r.Context(), targetID, role)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("role update failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, account)
}

// ---------------------- DELETE ----------------------

func (h *AdminHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := pathID(r)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if targetID == id.AccountID {
		h.log.WithFields(logrus.Fields{"code": "SELF_DELETION", "account_id": id.AccountID}).Warn("self-action rejected")
		utils.JSONError(w, http.StatusForbidden, "administrators cannot delete their own account")
		return
	}

	if err := h.accounts.Delete(r.Context(), targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.JSONError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.WithError(err).Error("account deletion failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------- STATS ----------------------

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Collect(r.Context())
	if err != nil {
		h.log.WithError(err).Error("stats collection failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}
