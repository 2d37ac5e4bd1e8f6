package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common"
	"github.com/regeshengen/water-quality-api/internal/common/security"
	"github.com/regeshengen/water-quality-api/internal/domain/model"
)

type contextKey string

const (
	UserIDCtxKey    contextKey = "userID"
	UserRoleCtxKey  contextKey = "userRole"
	UserEmailCtxKey contextKey = "userEmail"
)

// UserLoader resolves the subject of a verified token.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator rejects requests whose bearer token was missing or failed
// jwtauth.Verifier, then reloads the subject so deletions and role changes
// apply to tokens that are already issued. Identity in the context comes
// from the stored user, not from the claims.
func Authenticator(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				if errors.Is(err, jwtauth.ErrNoTokenFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
				}
				return
			}
			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			if _, err := security.GetUserRoleFromClaims(claims); err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					common.RespondWithError(w, http.StatusUnauthorized, "User no longer exists")
					return
				}
				slog.ErrorContext(r.Context(), "loading token subject failed", "user_id", userID, "error", err)
				common.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, user.ID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, user.Role)
			ctx = context.WithValue(ctx, UserEmailCtxKey, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetUserRoleFromContext(r.Context())
		if !ok || role != model.RoleAdministrator {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// Helper to get user role from context
func GetUserRoleFromContext(ctx context.Context) (model.Role, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(model.Role)
	return userRole, ok
}

// ActorFromContext returns the authenticated identity set by Authenticator.
func ActorFromContext(ctx context.Context) (service.Actor, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return service.Actor{}, false
	}
	role, _ := GetUserRoleFromContext(ctx)
	return service.Actor{ID: userID, Role: role}, true
}
