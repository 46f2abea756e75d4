// Package middlewares carries the HTTP middleware shared by the router.
package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
)

// The upstream auth layer terminates the session/JWT and injects the
// verified identity as headers. This core trusts those headers
// unconditionally; it never sees credentials.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"

	RoleAdmin = "admin"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const identityKey contextKey = "identity"

type Identity struct {
	UserID string
	Role   string
}

// IdentityFromContext returns the identity attached by Identify, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// Identify lifts the identity headers into the request context.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID: r.Header.Get(HeaderUserID),
			Role:   r.Header.Get(HeaderUserRole),
		}
		if id.UserID != "" {
			r = r.WithContext(context.WithValue(r.Context(), identityKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests that arrived without a verified identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			deny(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects authenticated requests lacking the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if id.Role != RoleAdmin {
			deny(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": msg,
	})
}
