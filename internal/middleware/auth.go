package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookcycle/bookcycle-backend/internal/api/httpx"
	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/models"
)

type identityKey struct{}

// Identity is the request-scoped authentication context resolved from
// the bearer token. Handlers receive it instead of re-decoding tokens.
type Identity struct {
	UserID string
	Role   models.Role
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type AuthMiddleware struct {
	TM *auth.TokenManager
}

func NewAuthMiddleware(tm *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{TM: tm}
}

// Require rejects requests without a valid access token: 401 with
// distinct messages for a missing and an invalid credential.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := m.resolve(r)
		if !ok {
			code := "invalid_token"
			msg := "invalid access token"
			if r.Header.Get("Authorization") == "" {
				code = "no_token"
				msg = "missing bearer token"
			}
			httpx.WriteError(w, http.StatusUnauthorized, code, msg, nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches an identity when a valid token is present and lets
// the request through as a guest otherwise. Storefront listing and
// support submission use it.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.resolve(r); ok {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (Identity, bool) {
	ah := r.Header.Get("Authorization")
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return Identity{}, false
	}
	token := strings.TrimSpace(ah[len("Bearer "):])

	claims, isRefresh, err := m.TM.ParseAny(token)
	if err != nil || isRefresh {
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, Role: models.Role(claims.Role)}, true
}
