package user

import (
	"context"
	"testing"

	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/apperror"
	"github.com/ledgerline/identity-core/internal/pkg/nullable"
	"github.com/ledgerline/identity-core/internal/pkg/password"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
	"github.com/ledgerline/identity-core/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store   *memory.Store
	dir     user.Directory
	hasher  password.Hasher
	company company.Company
	admin   user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	hasher := password.NewBcryptHasher(bcrypt.MinCost, 4)
	dir := NewDirectory(memory.NewUserRepository(store), hasher)

	c := createCompany(t, store, "Acme")
	admin, err := dir.CreateAdmin(ctx, c.ID, user.NewAdmin{
		Email: "admin@acme.com", Password: "secret1", FirstName: "Ada", LastName: "Admin",
	})
	require.NoError(t, err)

	return &fixture{store: store, dir: dir, hasher: hasher, company: c, admin: admin}
}

func createCompany(t *testing.T, store *memory.Store, name string) company.Company {
	t.Helper()
	c, err := memory.NewCompanyRepository(store).Create(context.Background(), company.Company{
		Name: name, Country: "US", CurrencyCode: "USD",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) member(t *testing.T, email string, role user.Role, managerID *string) user.User {
	t.Helper()
	u, err := f.dir.CreateMember(context.Background(), f.company.ID, user.CreateUserRequest{
		Email: email, Password: "secret1", FirstName: "First", LastName: "Last",
		Role: string(role), ManagerID: managerID,
	})
	require.NoError(t, err)
	return u
}

func TestDirectory_CreateAdmin(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, user.RoleAdmin, f.admin.Role)
	assert.Equal(t, f.company.ID, f.admin.CompanyID)
	assert.True(t, f.admin.IsActive)
	assert.NotEqual(t, "secret1", f.admin.PasswordHash)
	assert.NoError(t, f.hasher.Compare(context.Background(), f.admin.PasswordHash, "secret1"))
}

func TestDirectory_CreateMember(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and keeps manager", func(t *testing.T) {
		f := newFixture(t)
		u := f.member(t, "  Bob@Acme.COM ", user.RoleEmployee, &f.admin.ID)
		assert.Equal(t, "bob@acme.com", u.Email)
		require.NotNil(t, u.ManagerID)
		assert.Equal(t, f.admin.ID, *u.ManagerID)
	})

	t.Run("empty manager id means none", func(t *testing.T) {
		f := newFixture(t)
		empty := ""
		u := f.member(t, "bob@acme.com", user.RoleManager, &empty)
		assert.Nil(t, u.ManagerID)
	})

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dir.CreateMember(ctx, f.company.ID, user.CreateUserRequest{
			Email: "ADMIN@acme.com", Password: "secret1", FirstName: "A", LastName: "B", Role: "employee",
		})
		assert.ErrorIs(t, err, user.ErrEmailExists)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("admin role is not assignable", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dir.CreateMember(ctx, f.company.ID, user.CreateUserRequest{
			Email: "x@acme.com", Password: "secret1", FirstName: "A", LastName: "B", Role: "admin",
		})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, user.ErrRoleNotAssignable.Message, verrs.ToMap()["role"])
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dir.CreateMember(ctx, f.company.ID, user.CreateUserRequest{Role: "employee"})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.ToMap()
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "password")
		assert.Contains(t, fields, "firstName")
		assert.Contains(t, fields, "lastName")
	})

	t.Run("manager from another company is rejected and nothing is inserted", func(t *testing.T) {
		f := newFixture(t)
		other := createCompany(t, f.store, "Other")
		outsider, err := f.dir.CreateAdmin(ctx, other.ID, user.NewAdmin{
			Email: "boss@other.com", Password: "secret1", FirstName: "O", LastName: "B",
		})
		require.NoError(t, err)

		_, err = f.dir.CreateMember(ctx, f.company.ID, user.CreateUserRequest{
			Email: "new@acme.com", Password: "secret1", FirstName: "N", LastName: "U",
			Role: "employee", ManagerID: &outsider.ID,
		})
		assert.ErrorIs(t, err, user.ErrInvalidManager)

		_, err = f.dir.FindByEmail(ctx, "new@acme.com")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("unknown or malformed manager", func(t *testing.T) {
		f := newFixture(t)
		for _, id := range []string{"not-a-uuid", "123e4567-e89b-12d3-a456-426614174000"} {
			_, err := f.dir.CreateMember(ctx, f.company.ID, user.CreateUserRequest{
				Email: "new@acme.com", Password: "secret1", FirstName: "N", LastName: "U",
				Role: "employee", ManagerID: &id,
			})
			assert.ErrorIs(t, err, user.ErrInvalidManager, id)
		}
	})
}

func TestDirectory_Find(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bob := f.member(t, "bob@acme.com", user.RoleEmployee, &f.admin.ID)
	require.NoError(t, f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, bob.ID))

	found, err := f.dir.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	_, err = f.dir.FindActiveByIDWithCompany(ctx, bob.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	profile, err := f.dir.FindActiveByIDWithCompany(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", profile.CompanyName)

	member, err := f.dir.Get(ctx, f.company.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, member.ManagerFirstName)
	assert.Equal(t, "Ada", *member.ManagerFirstName)

	_, err = f.dir.Get(ctx, "another-company", bob.ID)
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	_, err = f.dir.FindByID(ctx, "42")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDirectory_ListManagers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := f.member(t, "mgr@acme.com", user.RoleManager, nil)
	f.member(t, "emp@acme.com", user.RoleEmployee, nil)
	require.NoError(t, f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, mgr.ID))

	managers, err := f.dir.ListManagers(ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, f.admin.ID, managers[0].ID)
}

func TestDirectory_Update(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }

	t.Run("admin cannot demote themselves", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, f.admin.ID, user.UpdateUserRequest{Role: str("employee")})
		assert.ErrorIs(t, err, user.ErrSelfRoleChange)
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

		stored, err := f.dir.FindByID(ctx, f.admin.ID)
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, stored.Role)
	})

	t.Run("admin may keep their own role and rename", func(t *testing.T) {
		f := newFixture(t)
		updated, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, f.admin.ID, user.UpdateUserRequest{
			Role: str("admin"), FirstName: str("Ada2"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ada2", updated.FirstName)
		assert.Equal(t, "Admin", updated.LastName)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		_, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{Role: str("owner")})
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("promote another user", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		updated, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{Role: str("manager")})
		require.NoError(t, err)
		assert.Equal(t, user.RoleManager, updated.Role)
	})

	t.Run("self manager", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		_, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{ManagerID: nullable.Of(bob.ID)})
		assert.ErrorIs(t, err, user.ErrSelfManager)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("manager from another company", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		other := createCompany(t, f.store, "Other")
		outsider, err := f.dir.CreateAdmin(ctx, other.ID, user.NewAdmin{
			Email: "boss@other.com", Password: "secret1", FirstName: "O", LastName: "B",
		})
		require.NoError(t, err)

		_, err = f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{ManagerID: nullable.Of(outsider.ID)})
		assert.ErrorIs(t, err, user.ErrInvalidManager)
	})

	t.Run("manager presence", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, &f.admin.ID)

		kept, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{LastName: str("Builder")})
		require.NoError(t, err)
		require.NotNil(t, kept.ManagerID)
		assert.Equal(t, "Builder", kept.LastName)

		cleared, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{ManagerID: nullable.Null[string]()})
		require.NoError(t, err)
		assert.Nil(t, cleared.ManagerID)
	})

	t.Run("empty manager id clears the manager", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, &f.admin.ID)

		cleared, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{ManagerID: nullable.Of(" ")})
		require.NoError(t, err)
		assert.Nil(t, cleared.ManagerID)
	})

	t.Run("blank name", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		_, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{FirstName: str(" ")})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("not found outside tenant", func(t *testing.T) {
		f := newFixture(t)
		other := createCompany(t, f.store, "Other")
		outsider, err := f.dir.CreateAdmin(ctx, other.ID, user.NewAdmin{
			Email: "boss@other.com", Password: "secret1", FirstName: "O", LastName: "B",
		})
		require.NoError(t, err)

		_, err = f.dir.Update(ctx, f.company.ID, f.admin.ID, outsider.ID, user.UpdateUserRequest{FirstName: str("X")})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("update cannot reactivate", func(t *testing.T) {
		f := newFixture(t)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, nil)
		require.NoError(t, f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, bob.ID))

		updated, err := f.dir.Update(ctx, f.company.ID, f.admin.ID, bob.ID, user.UpdateUserRequest{FirstName: str("Back")})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})
}

func TestDirectory_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("self", func(t *testing.T) {
		f := newFixture(t)
		err := f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, f.admin.ID)
		assert.ErrorIs(t, err, user.ErrSelfDeactivation)

		stored, err := f.dir.FindByID(ctx, f.admin.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsActive)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		err := f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, "123e4567-e89b-12d3-a456-426614174000")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("deactivated user stays a valid manager reference", func(t *testing.T) {
		f := newFixture(t)
		mgr := f.member(t, "mgr@acme.com", user.RoleManager, nil)
		bob := f.member(t, "bob@acme.com", user.RoleEmployee, &mgr.ID)
		require.NoError(t, f.dir.Deactivate(ctx, f.company.ID, f.admin.ID, mgr.ID))

		member, err := f.dir.Get(ctx, f.company.ID, bob.ID)
		require.NoError(t, err)
		require.NotNil(t, member.ManagerID)
		assert.Equal(t, mgr.ID, *member.ManagerID)
	})
}
