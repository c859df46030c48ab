package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskify/internal/apperrors"
	"taskify/internal/services"
)

type ctxKey string

const (
	CtxUserID ctxKey = "user_id"
	CtxEmail  ctxKey = "email"
)

// Authenticator verifies a raw session token.
type Authenticator interface {
	Authenticate(token string) (*services.SessionClaims, error)
}

// SessionAuth rejects requests without a valid session token. The token is
// taken from the named cookie first. A cookie that fails verification falls
// back to an Authorization: Bearer header when one is present.
func SessionAuth(auth Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(auth, r, cookieName)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(auth Authenticator, r *http.Request, cookieName string) (*services.SessionClaims, error) {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		claims, err := auth.Authenticate(c.Value)
		if err == nil || r.Header.Get("Authorization") == "" {
			return claims, err
		}
	}

	token, err := bearerToken(r)
	if err != nil {
		return nil, err
	}
	return auth.Authenticate(token)
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.ErrAuthRequired
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

// UserIDFromContext returns the authenticated subject set by SessionAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxUserID).(string)
	return id, ok && id != ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	appErr := apperrors.ErrInvalidToken
	var e *apperrors.Error
	if errors.As(err, &e) {
		appErr = e
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}
