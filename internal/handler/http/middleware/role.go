package middleware

import (
	"net/http"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/handler/http/response"
)

// RequireRoles admits principals holding one of roles. It must run after
// Authenticate.
func RequireRoles(guard auth.Guard, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrUnauthenticated)
				return
			}

			if err := guard.Authorize(principal, roles...); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
