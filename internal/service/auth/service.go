package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/apperror"
	"github.com/ledgerline/identity-core/internal/pkg/database"
	"github.com/ledgerline/identity-core/internal/pkg/jwt"
	"github.com/ledgerline/identity-core/internal/pkg/password"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

// dummyHash is compared against when the email is unknown so that both
// login failures cost one bcrypt verification.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthServiceImpl struct {
	tx          database.Transactor
	provisioner company.Provisioner
	directory   user.Directory
	hasher      password.Hasher
	jwtService  jwt.Service
}

func NewAuthService(
	tx database.Transactor,
	provisioner company.Provisioner,
	directory user.Directory,
	hasher password.Hasher,
	jwtService jwt.Service,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:          tx,
		provisioner: provisioner,
		directory:   directory,
		hasher:      hasher,
		jwtService:  jwtService,
	}
}

// Signup implements auth.AuthService.
func (a *AuthServiceImpl) Signup(ctx context.Context, req auth.SignupRequest) (auth.SignupResult, error) {
	if err := req.Validate(); err != nil {
		return auth.SignupResult{}, err
	}

	_, err := a.directory.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return auth.SignupResult{}, user.ErrEmailExists
	case !errors.Is(err, user.ErrUserNotFound):
		return auth.SignupResult{}, fmt.Errorf("failed to check email: %w", err)
	}

	var result auth.SignupResult
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		newCompany, err := a.provisioner.Provision(ctx, req.CompanyName, req.Country, req.CurrencyCode)
		if err != nil {
			return err
		}
		if err := a.provisioner.SeedDefaultCategories(ctx, newCompany.ID); err != nil {
			return err
		}
		admin, err := a.directory.CreateAdmin(ctx, newCompany.ID, user.NewAdmin{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			return err
		}

		result.User = admin
		result.Company = newCompany
		return nil
	})
	if err != nil {
		return auth.SignupResult{}, signupError(err)
	}

	result.Session, err = a.issue(result.User)
	if err != nil {
		return auth.SignupResult{}, err
	}

	slog.Info("Company signed up", "company_id", result.Company.ID, "user_id", result.User.ID)
	return result, nil
}

// signupError keeps caller-facing failures and hides everything else behind
// auth.ErrSignupFailed. The transaction is already rolled back.
func signupError(err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, user.ErrEmailExists):
		return user.ErrEmailExists
	case errors.As(err, &verrs), apperror.Is(err, apperror.KindValidation):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	default:
		slog.Error("Signup transaction rolled back", "error", err)
		return auth.ErrSignupFailed
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResult{}, err
	}

	found, err := a.directory.FindByEmail(ctx, req.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		_ = a.hasher.Compare(ctx, dummyHash, req.Password)
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := a.hasher.Compare(ctx, found.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return auth.LoginResult{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResult{}, err
	}

	return a.startSession(ctx, found)
}

// LoginWithGoogle implements auth.AuthService. Only existing accounts can
// sign in this way.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, email string) (auth.LoginResult, error) {
	found, err := a.directory.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return auth.LoginResult{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("failed to find user: %w", err)
	}
	return a.startSession(ctx, found)
}

func (a *AuthServiceImpl) startSession(ctx context.Context, found user.User) (auth.LoginResult, error) {
	if !found.IsActive {
		return auth.LoginResult{}, auth.ErrAccountDeactivated
	}

	profile, err := a.directory.FindActiveByIDWithCompany(ctx, found.ID)
	if errors.Is(err, user.ErrUserNotFound) {
		// deactivated between the two reads
		return auth.LoginResult{}, auth.ErrAccountDeactivated
	}
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("failed to load profile: %w", err)
	}

	session, err := a.issue(profile.User)
	if err != nil {
		return auth.LoginResult{}, err
	}

	slog.Info("User logged in", "user_id", profile.ID, "company_id", profile.CompanyID)
	return auth.LoginResult{Profile: profile, Session: session}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, principal auth.Principal) error {
	if err := a.jwtService.RevokeToken(ctx, principal.TokenID, time.Unix(principal.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	slog.Info("User logged out", "user_id", principal.UserID)
	return nil
}

func (a *AuthServiceImpl) issue(u user.User) (auth.Session, error) {
	token, expiresAt, err := a.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return auth.Session{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return auth.Session{Token: token, ExpiresAt: expiresAt}, nil
}
