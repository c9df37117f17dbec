// Package middleware implements the authorization gate every protected route
// goes through: bearer token extraction, verification, and role checks.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cleantask/cleantask-api/internal/auth"
	"github.com/cleantask/cleantask-api/internal/models"
	"github.com/cleantask/cleantask-api/internal/utils"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the verified subject of a request.
type Identity struct {
	AccountID int64
	Role      models.Role
}

// WithIdentity stores a verified identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the verified identity stored by Authenticate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticate verifies the bearer token and stores the subject identity in
// the request context. Missing, malformed, expired and badly signed tokens
// are indistinguishable to the client: all answer 401 with the same body.
func Authenticate(issuer *auth.Issuer, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil {
				var claims *auth.Claims
				claims, err = issuer.Verify(token)
				if err == nil {
					id := Identity{AccountID: claims.AccountID(), Role: claims.Role}
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
					return
				}
			}

			log.WithFields(logrus.Fields{
				"code":   "AUTHN_FAILED",
				"reason": err.Error(),
				"path":   r.URL.Path,
			}).Warn("authentication rejected")
			utils.JSONError(w, http.StatusUnauthorized, "authentication required")
		})
	}
}

// RequireRole admits only identities with exactly the given role. It must
// run after Authenticate; a missing identity is a wiring bug and answers
// 401 rather than panicking.
func RequireRole(role models.Role, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if id.Role != role {
				log.WithFields(logrus.Fields{
					"code":       "AUTHZ_FORBIDDEN",
					"account_id": id.AccountID,
					"role":       id.Role,
					"path":       r.URL.Path,
				}).Warn("authorization rejected")
				utils.JSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", auth.ErrTokenMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrTokenMalformed
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", auth.ErrTokenMissing
	}
	return token, nil
}
