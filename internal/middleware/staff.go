package middleware

import (
	"net/http"

	"github.com/expentra/expentra/internal/auth"
)

const detailNoPermission = "You do not have permission to perform this action."

// RequireStaff returns middleware that restricts access to staff
// accounts. Must be applied after Auth middleware.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w, detailNoCredentials)
				return
			}

			if !authCtx.IsStaff {
				writeAuthError(w, detailNoPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser returns middleware that restricts access to
// superuser accounts. Must be applied after Auth middleware.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w, detailNoCredentials)
				return
			}

			if !authCtx.IsSuperuser {
				writeAuthError(w, detailNoPermission)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
