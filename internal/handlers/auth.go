package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/middleware"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/store"
	"github.com/cleantask/cleantask-api/internal/utils"
)

// credentialsRejected is the single message for unknown email and wrong
// password alike, so responses never reveal whether an account exists.
const credentialsRejected = "invalid credentials"

type AuthHandler struct {
	accounts store.AccountRepository
	hasher   *auth.Hasher
	issuer   *auth.Issuer
	log      *logrus.Logger
}

func NewAuthHandler(accounts store.AccountRepository, hasher *auth.Hasher, issuer *auth.Issuer, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, hasher: hasher, issuer: issuer, log: log}
}

// ----------- Request/Response DTOs -------------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   *models.Account `json:"account"`
}

type registerReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if !utils.ValidEmail(req.Email) {
		utils.JSONError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	account, err := h.accounts.GetByEmail(r.Context(), utils.NormalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		h.log.WithFields(logrus.Fields{"code": "LOGIN_UNKNOWN_EMAIL"}).Info("login rejected")
		utils.JSONError(w, http.StatusUnauthorized, credentialsRejected)
		return
	}
	if err != nil {
		h.log.WithError(err).Error("login lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !h.hasher.Check(req.Password, account.PasswordHash) {
		h.log.WithFields(logrus.Fields{"code": "LOGIN_BAD_PASSWORD", "account_id": account.ID}).Info("login rejected")
		utils.JSONError(w, http.StatusUnauthorized, credentialsRejected)
		return
	}

	token, exp, err := h.issuer.Issue(account.ID, account.Role)
	if err != nil {
		h.log.WithError(err).Error("token issuance failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, loginResp{Token: token, ExpiresAt: exp, Account: account})
}

// -------------- REGISTER ----------------------

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if msg := validateRegistration(&req); msg != "" {
		utils.JSONError(w, http.StatusBadRequest, msg)
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
		Role:         models.RoleUser,
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

// validateRegistration returns a field-specific message for the first failing
// rule, or "" when the request is valid.
func validateRegistration(req *registerReq) string {
	switch {
	case req.Name == "":
		return "name is required"
	case req.Email == "":
		return "email is required"
	case !utils.ValidEmail(req.Email):
		return "invalid email format"
	}
	if msg := utils.CheckPasswordStrength(req.Password); msg != "" {
		return msg
	}
	if req.Password != req.ConfirmPassword {
		return "password confirmation does not match"
	}
	return ""
}

// -------------- ME (protected) ----------------

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.accounts.GetByID(r.Context(), id.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		// account deleted after token issuance
		utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("account lookup failed")
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, account)
}
