package middleware

import (
	"net/http"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/user"
)

// AdminOnly admits company administrators.
func AdminOnly(guard auth.Guard) func(http.Handler) http.Handler {
	return RequireRoles(guard, user.RoleAdmin)
}
