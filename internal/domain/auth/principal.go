package auth

import (
	"context"

	"github.com/ledgerline/identity-core/internal/domain/user"
)

// Principal is the identity behind an authenticated request. Role and
// CompanyID come from the live user record, not from the token.
type Principal struct {
	UserID    string
	CompanyID string
	Role      user.Role
	TokenID   string
	ExpiresAt int64
	Profile   user.UserWithCompany
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
