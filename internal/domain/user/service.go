package user

import "context"

// Directory owns the user invariants of a company: uniqueness, manager
// hierarchy, self-modification guards and soft deletion.
type Directory interface {
	CreateMember(ctx context.Context, companyID string, req CreateUserRequest) (User, error)
	CreateAdmin(ctx context.Context, companyID string, req NewAdmin) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindActiveByIDWithCompany(ctx context.Context, id string) (UserWithCompany, error)
	Get(ctx context.Context, companyID, id string) (Member, error)
	ListByCompany(ctx context.Context, companyID string) ([]Member, error)
	ListManagers(ctx context.Context, companyID string) ([]ManagerOption, error)
	Update(ctx context.Context, companyID, actorID, id string, req UpdateUserRequest) (User, error)
	Deactivate(ctx context.Context, companyID, actorID, id string) error
}
