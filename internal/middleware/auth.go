package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mkamau/fleet-ledger/internal/auth"
	"github.com/mkamau/fleet-ledger/internal/domain"
)

// contextKey is a private type for context keys to avoid collisions with
// other packages storing values on the request context.
type contextKey string

const claimsContextKey contextKey = "claims"

// ClaimsFromContext returns the validated token claims set by Authenticate.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(auth.Claims)
	return claims, ok
}

// NewAuthenticator returns a middleware that requires a valid Bearer token
// on every request and stores its claims on the request context. Mount it on
// the protected subtree only; /healthz and /api/login stay outside.
func NewAuthenticator(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "authorization header required")
				return
			}
			claims, err := svc.ValidateToken(header)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Reports and exports sit behind it.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			unauthorized(w, "authentication required")
			return
		}
		if claims.Role != domain.RoleAdmin {
			forbidden(w, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	writeAuthError(w, http.StatusUnauthorized, "unauthorized", message)
}

func forbidden(w http.ResponseWriter, message string) {
	writeAuthError(w, http.StatusForbidden, "forbidden", message)
}

// writeAuthError emits the same JSON error envelope the handlers use, so
// clients see one error shape regardless of which layer rejected them.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
