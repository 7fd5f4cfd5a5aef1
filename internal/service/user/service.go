package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/nullable"
	"github.com/ledgerline/identity-core/internal/pkg/password"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

type DirectoryImpl struct {
	userRepo user.UserRepository
	hasher   password.Hasher
}

func NewDirectory(userRepo user.UserRepository, hasher password.Hasher) user.Directory {
	return &DirectoryImpl{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateMember implements user.Directory.
func (d *DirectoryImpl) CreateMember(ctx context.Context, companyID string, req user.CreateUserRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		return user.User{}, err
	}

	managerID := req.ManagerID
	if managerID != nil && strings.TrimSpace(*managerID) == "" {
		managerID = nil
	}
	if managerID != nil {
		if err := d.checkManager(ctx, companyID, "", *managerID); err != nil {
			return user.User{}, err
		}
	}

	return d.create(ctx, user.User{
		Email:     user.NormalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      role,
		CompanyID: companyID,
		ManagerID: managerID,
	}, req.Password)
}

// CreateAdmin implements user.Directory.
func (d *DirectoryImpl) CreateAdmin(ctx context.Context, companyID string, req user.NewAdmin) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	return d.create(ctx, user.User{
		Email:     user.NormalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      user.RoleAdmin,
		CompanyID: companyID,
	}, req.Password)
}

func (d *DirectoryImpl) create(ctx context.Context, newUser user.User, plain string) (user.User, error) {
	exists, err := d.userRepo.ExistsByEmail(ctx, newUser.Email)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return user.User{}, user.ErrEmailExists
	}

	newUser.PasswordHash, err = d.hasher.Hash(ctx, plain)
	if err != nil {
		return user.User{}, err
	}

	created, err := d.userRepo.Create(ctx, newUser)
	if err != nil {
		// a concurrent insert can still win the unique index
		if errors.Is(err, user.ErrEmailExists) || errors.Is(err, user.ErrInvalidManager) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("User created", "user_id", created.ID, "company_id", created.CompanyID, "role", created.Role)
	return created, nil
}

// FindByEmail implements user.Directory.
func (d *DirectoryImpl) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return d.userRepo.GetByEmail(ctx, user.NormalizeEmail(email))
}

// FindByID implements user.Directory. Deactivated users are returned too.
func (d *DirectoryImpl) FindByID(ctx context.Context, id string) (user.User, error) {
	if !validator.IsValidUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	return d.userRepo.GetByID(ctx, id)
}

// FindActiveByIDWithCompany implements user.Directory.
func (d *DirectoryImpl) FindActiveByIDWithCompany(ctx context.Context, id string) (user.UserWithCompany, error) {
	if !validator.IsValidUUID(id) {
		return user.UserWithCompany{}, user.ErrUserNotFound
	}
	return d.userRepo.GetActiveWithCompany(ctx, id)
}

// Get implements user.Directory.
func (d *DirectoryImpl) Get(ctx context.Context, companyID, id string) (user.Member, error) {
	if !validator.IsValidUUID(id) {
		return user.Member{}, user.ErrUserNotFound
	}
	return d.userRepo.GetMember(ctx, companyID, id)
}

// ListByCompany implements user.Directory.
func (d *DirectoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.Member, error) {
	return d.userRepo.ListByCompany(ctx, companyID)
}

// ListManagers implements user.Directory.
func (d *DirectoryImpl) ListManagers(ctx context.Context, companyID string) ([]user.ManagerOption, error) {
	return d.userRepo.ListManagers(ctx, companyID)
}

// Update implements user.Directory.
func (d *DirectoryImpl) Update(ctx context.Context, companyID, actorID, id string, req user.UpdateUserRequest) (user.User, error) {
	if !validator.IsValidUUID(id) {
		return user.User{}, user.ErrUserNotFound
	}
	existing, err := d.userRepo.GetMember(ctx, companyID, id)
	if err != nil {
		return user.User{}, err
	}

	var changes user.Changes
	if req.Role != nil {
		if id == actorID && existing.IsAdmin() && strings.TrimSpace(*req.Role) != string(user.RoleAdmin) {
			return user.User{}, user.ErrSelfRoleChange
		}
		role, err := user.ParseRole(*req.Role)
		if err != nil {
			return user.User{}, err
		}
		changes.Role = &role
	}

	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	changes.FirstName = trimmed(req.FirstName)
	changes.LastName = trimmed(req.LastName)

	if req.ManagerID.Set {
		changes.ManagerID = managerChange(req.ManagerID)
		if !changes.ManagerID.IsNull() {
			if err := d.checkManager(ctx, companyID, id, *changes.ManagerID.Value); err != nil {
				return user.User{}, err
			}
		}
	}

	updated, err := d.userRepo.Update(ctx, companyID, id, changes)
	if err != nil {
		return user.User{}, err
	}

	slog.Info("User updated", "user_id", id, "company_id", companyID, "actor_id", actorID)
	return updated, nil
}

// Deactivate implements user.Directory.
func (d *DirectoryImpl) Deactivate(ctx context.Context, companyID, actorID, id string) error {
	if !validator.IsValidUUID(id) {
		return user.ErrUserNotFound
	}
	if _, err := d.userRepo.GetMember(ctx, companyID, id); err != nil {
		return err
	}
	if id == actorID {
		return user.ErrSelfDeactivation
	}

	if err := d.userRepo.Deactivate(ctx, companyID, id); err != nil {
		return err
	}

	slog.Info("User deactivated", "user_id", id, "company_id", companyID, "actor_id", actorID)
	return nil
}

// checkManager requires managerID to name a user of companyID other than
// userID. Deactivated managers are accepted.
func (d *DirectoryImpl) checkManager(ctx context.Context, companyID, userID, managerID string) error {
	if managerID == userID {
		return user.ErrSelfManager
	}
	if !validator.IsValidUUID(managerID) {
		return user.ErrInvalidManager
	}
	manager, err := d.userRepo.GetByID(ctx, managerID)
	if errors.Is(err, user.ErrUserNotFound) {
		return user.ErrInvalidManager
	}
	if err != nil {
		return fmt.Errorf("failed to load manager: %w", err)
	}
	if manager.CompanyID != companyID {
		return user.ErrInvalidManager
	}
	return nil
}

// managerChange treats an empty managerId like an explicit null.
func managerChange(f nullable.Field[string]) nullable.Field[string] {
	if f.IsNull() || strings.TrimSpace(*f.Value) == "" {
		return nullable.Null[string]()
	}
	return nullable.Of(*f.Value)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
