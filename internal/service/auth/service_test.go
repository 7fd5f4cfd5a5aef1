package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/apperror"
	"github.com/ledgerline/identity-core/internal/pkg/jwt"
	"github.com/ledgerline/identity-core/internal/pkg/password"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
	"github.com/ledgerline/identity-core/internal/repository/memory"
	companyservice "github.com/ledgerline/identity-core/internal/service/company"
	userservice "github.com/ledgerline/identity-core/internal/service/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-min-32-bytes-long"

type testEnv struct {
	store     *memory.Store
	users     user.UserRepository
	directory user.Directory
	jwt       *jwt.JWTService
	auth      auth.AuthService
	guard     auth.Guard
}

type envOption func(*envConfig)

type envConfig struct {
	companies func(company.CompanyRepository) company.CompanyRepository
	users     func(user.UserRepository) user.UserRepository
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{
		companies: func(r company.CompanyRepository) company.CompanyRepository { return r },
		users:     func(r user.UserRepository) user.UserRepository { return r },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := memory.NewStore()
	users := cfg.users(memory.NewUserRepository(store))
	hasher := password.NewBcryptHasher(bcrypt.MinCost, 4)
	directory := userservice.NewDirectory(users, hasher)
	provisioner := companyservice.NewProvisioner(cfg.companies(memory.NewCompanyRepository(store)))
	jwtService := jwt.NewJWTService(testSecret, time.Hour, jwt.NewMemoryRevocationStore())

	return &testEnv{
		store:     store,
		users:     users,
		directory: directory,
		jwt:       jwtService,
		auth:      NewAuthService(store, provisioner, directory, hasher, jwtService),
		guard:     NewGuard(jwtService, directory),
	}
}

func signupRequest(email string) auth.SignupRequest {
	return auth.SignupRequest{
		Email:        email,
		Password:     "secret1",
		FirstName:    "A",
		LastName:     "B",
		CompanyName:  "Acme",
		Country:      "US",
		CurrencyCode: "USD",
	}
}

// failingCategories fails the seeding step after the company row exists.
type failingCategories struct {
	company.CompanyRepository
}

func (failingCategories) CreateCategories(context.Context, []company.ExpenseCategory) error {
	return errors.New("disk full")
}

// racingUsers hides existing emails from the pre-checks, as a concurrent
// signup would.
type racingUsers struct {
	user.UserRepository
}

func (racingUsers) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func (racingUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates company, categories and admin", func(t *testing.T) {
		env := newTestEnv(t)

		result, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, result.User.Role)
		assert.Equal(t, "Acme", result.Company.Name)
		assert.Equal(t, result.Company.ID, result.User.CompanyID)
		assert.NotEmpty(t, result.Session.Token)

		claims, err := env.jwt.ParseAccessToken(ctx, result.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, claims.UserID)
		assert.Equal(t, "admin", claims.Role)

		nCompanies, nCategories, nUsers := env.store.Counts()
		assert.Equal(t, 1, nCompanies)
		assert.Equal(t, 5, nCategories)
		assert.Equal(t, 1, nUsers)

		members, err := env.directory.ListByCompany(ctx, result.Company.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("second signup with same email conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
		require.NoError(t, err)

		_, err = env.auth.Signup(ctx, signupRequest(" A@X.com"))
		assert.ErrorIs(t, err, user.ErrEmailExists)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

		nCompanies, _, _ := env.store.Counts()
		assert.Equal(t, 1, nCompanies)
	})

	t.Run("unique violation inside the transaction conflicts", func(t *testing.T) {
		env := newTestEnv(t, func(c *envConfig) {
			c.users = func(r user.UserRepository) user.UserRepository { return racingUsers{r} }
		})
		_, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
		require.NoError(t, err)

		_, err = env.auth.Signup(ctx, signupRequest("a@x.com"))
		assert.ErrorIs(t, err, user.ErrEmailExists)

		nCompanies, nCategories, nUsers := env.store.Counts()
		assert.Equal(t, 1, nCompanies)
		assert.Equal(t, 5, nCategories)
		assert.Equal(t, 1, nUsers)
	})

	t.Run("failure after company creation rolls back", func(t *testing.T) {
		env := newTestEnv(t, func(c *envConfig) {
			c.companies = func(r company.CompanyRepository) company.CompanyRepository { return failingCategories{r} }
		})

		_, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
		assert.ErrorIs(t, err, auth.ErrSignupFailed)
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
		assert.NotContains(t, err.Error(), "disk full")

		nCompanies, nCategories, nUsers := env.store.Counts()
		assert.Zero(t, nCompanies)
		assert.Zero(t, nCategories)
		assert.Zero(t, nUsers)
	})

	t.Run("malformed currency is a validation error and leaves nothing", func(t *testing.T) {
		env := newTestEnv(t)
		req := signupRequest("a@x.com")
		req.CurrencyCode = "U5D"

		_, err := env.auth.Signup(ctx, req)
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "currencyCode")

		nCompanies, _, _ := env.store.Counts()
		assert.Zero(t, nCompanies)
	})

	t.Run("currency outside the ISO registry is accepted", func(t *testing.T) {
		env := newTestEnv(t)
		req := signupRequest("a@x.com")
		req.CurrencyCode = "ggp"

		result, err := env.auth.Signup(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "GGP", result.Company.CurrencyCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Signup(ctx, auth.SignupRequest{Email: "a@x.com"})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "companyName")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	signed, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		result, err := env.auth.Login(ctx, auth.LoginRequest{Email: "A@x.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, result.Profile.ID)
		assert.Equal(t, "Acme", result.Profile.CompanyName)
		assert.NotEmpty(t, result.Session.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, wrongPassword := env.auth.Login(ctx, auth.LoginRequest{Email: "a@x.com", Password: "nope"})
		_, unknownEmail := env.auth.Login(ctx, auth.LoginRequest{Email: "ghost@x.com", Password: "nope"})

		assert.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	})

	t.Run("deactivated account is forbidden", func(t *testing.T) {
		member, err := env.directory.CreateMember(ctx, signed.Company.ID, user.CreateUserRequest{
			Email: "bob@x.com", Password: "secret1", FirstName: "Bob", LastName: "B", Role: "employee",
		})
		require.NoError(t, err)
		require.NoError(t, env.directory.Deactivate(ctx, signed.Company.ID, signed.User.ID, member.ID))

		_, err = env.auth.Login(ctx, auth.LoginRequest{Email: "bob@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, auth.ErrAccountDeactivated)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})

	t.Run("google login for existing user only", func(t *testing.T) {
		result, err := env.auth.LoginWithGoogle(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, result.Profile.ID)

		_, err = env.auth.LoginWithGoogle(ctx, "ghost@x.com")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	signed, err := env.auth.Signup(ctx, signupRequest("a@x.com"))
	require.NoError(t, err)

	t.Run("resolves live principal", func(t *testing.T) {
		p, err := env.guard.Authenticate(ctx, signed.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, signed.User.ID, p.UserID)
		assert.Equal(t, signed.Company.ID, p.CompanyID)
		assert.Equal(t, user.RoleAdmin, p.Role)
		assert.NoError(t, env.guard.Authorize(p, user.RoleAdmin))
	})

	t.Run("rejects bad tokens", func(t *testing.T) {
		for _, token := range []string{"", "garbage"} {
			_, err := env.guard.Authenticate(ctx, token)
			assert.ErrorIs(t, err, auth.ErrUnauthenticated)
			assert.Equal(t, apperror.KindUnauthenticated, apperror.KindOf(err))
		}
	})

	t.Run("role comes from the stored user", func(t *testing.T) {
		member, err := env.directory.CreateMember(ctx, signed.Company.ID, user.CreateUserRequest{
			Email: "mgr@x.com", Password: "secret1", FirstName: "M", LastName: "G", Role: "manager",
		})
		require.NoError(t, err)
		login, err := env.auth.Login(ctx, auth.LoginRequest{Email: "mgr@x.com", Password: "secret1"})
		require.NoError(t, err)

		p, err := env.guard.Authenticate(ctx, login.Session.Token)
		require.NoError(t, err)
		assert.ErrorIs(t, env.guard.Authorize(p, user.RoleAdmin), auth.ErrInsufficientRole)

		role := "employee"
		_, err = env.directory.Update(ctx, signed.Company.ID, signed.User.ID, member.ID, user.UpdateUserRequest{Role: &role})
		require.NoError(t, err)

		p, err = env.guard.Authenticate(ctx, login.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.RoleEmployee, p.Role)
	})

	t.Run("deactivation applies to issued tokens", func(t *testing.T) {
		member, err := env.directory.CreateMember(ctx, signed.Company.ID, user.CreateUserRequest{
			Email: "emp@x.com", Password: "secret1", FirstName: "E", LastName: "P", Role: "employee",
		})
		require.NoError(t, err)
		login, err := env.auth.Login(ctx, auth.LoginRequest{Email: "emp@x.com", Password: "secret1"})
		require.NoError(t, err)

		require.NoError(t, env.directory.Deactivate(ctx, signed.Company.ID, signed.User.ID, member.ID))

		_, err = env.guard.Authenticate(ctx, login.Session.Token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		login, err := env.auth.Login(ctx, auth.LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.NoError(t, err)
		p, err := env.guard.Authenticate(ctx, login.Session.Token)
		require.NoError(t, err)

		require.NoError(t, env.auth.Logout(ctx, p))

		_, err = env.guard.Authenticate(ctx, login.Session.Token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)

		_, err = env.guard.Authenticate(ctx, signed.Session.Token)
		assert.NoError(t, err, "other sessions stay valid")
	})
}
