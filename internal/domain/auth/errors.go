package auth

import "github.com/ledgerline/identity-core/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "invalid credentials")
	ErrAccountDeactivated = apperror.New(apperror.KindForbidden, "account is deactivated")
	ErrUnauthenticated    = apperror.New(apperror.KindUnauthenticated, "invalid or expired token")
	ErrInsufficientRole   = apperror.New(apperror.KindForbidden, "insufficient permissions")
	ErrSignupFailed       = apperror.New(apperror.KindInternal, "failed to create account")
)
