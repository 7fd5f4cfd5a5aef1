package auth

import (
	"context"

	"github.com/ledgerline/identity-core/internal/domain/user"
)

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (SignupResult, error)
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	// LoginWithGoogle signs in an existing active user by a verified email.
	LoginWithGoogle(ctx context.Context, email string) (LoginResult, error)
	Logout(ctx context.Context, principal Principal) error
}

// Guard resolves bearer tokens to principals and checks roles.
type Guard interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
	Authorize(principal Principal, allowed ...user.Role) error
}
