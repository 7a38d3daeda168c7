// Package middleware provides HTTP middleware for the juststorage API.
package middleware

import (
	"context"
	"net/http"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/api/auth"
	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
)

// Context key type for storing the principal
type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext retrieves the authenticated principal. Returns
// nil on routes that did not pass through Auth.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	p, ok := ctx.Value(principalContextKey).(*auth.Principal)
	if !ok {
		return nil
	}
	return p
}

// ErrorWriter writes a domain error as an HTTP response. Provided by
// the api package so the middleware shares its envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Auth authenticates every request and stores the principal in the
// context. Unauthenticated requests are rejected with 401.
func Auth(a auth.Authenticator, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := a.Authenticate(r)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant rejects requests whose explicit tenant_id query
// parameter disagrees with the principal. Objects of other tenants
// stay 404 from lookups; naming a foreign tenant outright is 403.
func RequireTenant(writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				writeError(w, r, objectstore.NewUnauthorized("authentication required"))
				return
			}

			if claimed := r.URL.Query().Get("tenant_id"); claimed != "" && claimed != principal.TenantID.String() {
				writeError(w, r, objectstore.NewForbidden("tenant_id does not match the authenticated tenant"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
