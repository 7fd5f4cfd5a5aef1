package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/handler/http/response"
)

// Authenticate resolves the bearer token to a principal and stores it in the
// request context. Requests without a valid token stop here with 401.
func Authenticate(guard auth.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				response.HandleError(w, auth.ErrUnauthenticated)
				return
			}

			principal, err := guard.Authenticate(r.Context(), token)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		}
		return http.HandlerFunc(hfn)
	}
}
