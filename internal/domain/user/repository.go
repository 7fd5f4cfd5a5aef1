package user

import (
	"context"

	"github.com/ledgerline/identity-core/internal/pkg/nullable"
)

// Changes is a partial update. Nil pointers keep the stored value; ManagerID
// overwrites whenever it is set, including with null.
type Changes struct {
	FirstName *string
	LastName  *string
	Role      *Role
	ManagerID nullable.Field[string]
}

// UserRepository is the credential store for users. Every lookup returns
// ErrUserNotFound when no row matches; Create returns ErrEmailExists on a
// duplicate email and ErrInvalidManager when the manager is not in the
// user's company.
type UserRepository interface {
	Create(ctx context.Context, newUser User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetActiveWithCompany(ctx context.Context, id string) (UserWithCompany, error)
	GetMember(ctx context.Context, companyID, id string) (Member, error)
	ListByCompany(ctx context.Context, companyID string) ([]Member, error)
	ListManagers(ctx context.Context, companyID string) ([]ManagerOption, error)
	Update(ctx context.Context, companyID, id string, changes Changes) (User, error)
	Deactivate(ctx context.Context, companyID, id string) error
}
