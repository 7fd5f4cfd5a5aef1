package user

import "github.com/ledgerline/identity-core/internal/pkg/apperror"

var (
	ErrUserNotFound      = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailExists       = apperror.New(apperror.KindConflict, "email already registered")
	ErrInvalidRole       = apperror.New(apperror.KindValidation, "invalid role")
	ErrRoleNotAssignable = apperror.New(apperror.KindValidation, "invalid role, must be employee or manager")
	ErrInvalidManager    = apperror.New(apperror.KindValidation, "invalid manager")
	ErrSelfManager       = apperror.New(apperror.KindValidation, "user cannot be their own manager")
	ErrSelfRoleChange    = apperror.New(apperror.KindForbidden, "cannot change your own admin role")
	ErrSelfDeactivation  = apperror.New(apperror.KindForbidden, "cannot delete your own account")
)
