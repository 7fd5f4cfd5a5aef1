package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

type userRepository struct {
	s *Store
}

func NewUserRepository(s *Store) user.UserRepository {
	return &userRepository{s: s}
}

// checkManager mirrors users_manager_same_company_fkey and
// users_manager_not_self_check. Callers hold the lock.
func (r *userRepository) checkManager(id, companyID string, managerID *string) error {
	if managerID == nil {
		return nil
	}
	if *managerID == id {
		return user.ErrSelfManager
	}
	m, ok := r.s.data.users[*managerID]
	if !ok || m.CompanyID != companyID {
		return user.ErrInvalidManager
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, newUser user.User) (user.User, error) {
	var created user.User
	err := r.s.write(ctx, func() error {
		if _, ok := r.s.data.companies[newUser.CompanyID]; !ok {
			return company.ErrCompanyNotFound
		}
		if err := fits(
			column{newUser.Email, validator.MaxEmailLength},
			column{newUser.FirstName, validator.MaxNameLength},
			column{newUser.LastName, validator.MaxNameLength},
		); err != nil {
			return err
		}
		if _, taken := r.s.data.emails[newUser.Email]; taken {
			return user.ErrEmailExists
		}
		created = newUser
		created.ID = newID()
		if err := r.checkManager(created.ID, created.CompanyID, created.ManagerID); err != nil {
			return err
		}
		created.IsActive = true
		created.CreatedAt = r.s.now()
		created.UpdatedAt = created.CreatedAt
		created.ManagerID = copyString(created.ManagerID)

		r.s.data.seq++
		r.s.data.users[created.ID] = userRow{User: created, seq: r.s.data.seq}
		r.s.data.emails[created.Email] = created.ID
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return created, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	var found user.User
	err := r.s.read(ctx, func() error {
		row, ok := r.s.data.users[id]
		if !ok {
			return user.ErrUserNotFound
		}
		found = row.User
		return nil
	})
	return found, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var found user.User
	err := r.s.read(ctx, func() error {
		id, ok := r.s.data.emails[email]
		if !ok {
			return user.ErrUserNotFound
		}
		found = r.s.data.users[id].User
		return nil
	})
	return found, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.s.read(ctx, func() error {
		_, exists = r.s.data.emails[email]
		return nil
	})
	return exists, err
}

func (r *userRepository) GetActiveWithCompany(ctx context.Context, id string) (user.UserWithCompany, error) {
	var found user.UserWithCompany
	err := r.s.read(ctx, func() error {
		row, ok := r.s.data.users[id]
		if !ok || !row.IsActive {
			return user.ErrUserNotFound
		}
		c, ok := r.s.data.companies[row.CompanyID]
		if !ok {
			return user.ErrUserNotFound
		}
		found = user.UserWithCompany{
			User:         row.User,
			CompanyName:  c.Name,
			Country:      c.Country,
			CurrencyCode: c.CurrencyCode,
		}
		return nil
	})
	return found, err
}

// member joins row with its manager. Callers hold the lock.
func (r *userRepository) member(row userRow) user.Member {
	m := user.Member{User: row.User}
	if row.ManagerID != nil {
		if mgr, ok := r.s.data.users[*row.ManagerID]; ok {
			m.ManagerFirstName = copyString(&mgr.FirstName)
			m.ManagerLastName = copyString(&mgr.LastName)
		}
	}
	return m
}

func (r *userRepository) GetMember(ctx context.Context, companyID, id string) (user.Member, error) {
	var found user.Member
	err := r.s.read(ctx, func() error {
		row, ok := r.s.data.users[id]
		if !ok || row.CompanyID != companyID {
			return user.ErrUserNotFound
		}
		found = r.member(row)
		return nil
	})
	return found, err
}

func (r *userRepository) ListByCompany(ctx context.Context, companyID string) ([]user.Member, error) {
	members := []user.Member{}
	err := r.s.read(ctx, func() error {
		rows := r.companyRows(companyID)
		sort.Slice(rows, func(i, j int) bool {
			if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
				return rows[i].CreatedAt.After(rows[j].CreatedAt)
			}
			return rows[i].seq > rows[j].seq
		})
		for _, row := range rows {
			members = append(members, r.member(row))
		}
		return nil
	})
	return members, err
}

func (r *userRepository) ListManagers(ctx context.Context, companyID string) ([]user.ManagerOption, error) {
	managers := []user.ManagerOption{}
	err := r.s.read(ctx, func() error {
		for _, row := range r.companyRows(companyID) {
			if !row.CanManage() {
				continue
			}
			managers = append(managers, user.ManagerOption{
				ID:        row.ID,
				FirstName: row.FirstName,
				LastName:  row.LastName,
				Email:     row.Email,
			})
		}
		sort.Slice(managers, func(i, j int) bool {
			if c := strings.Compare(managers[i].FirstName, managers[j].FirstName); c != 0 {
				return c < 0
			}
			return managers[i].LastName < managers[j].LastName
		})
		return nil
	})
	return managers, err
}

func (r *userRepository) Update(ctx context.Context, companyID, id string, changes user.Changes) (user.User, error) {
	var updated user.User
	err := r.s.write(ctx, func() error {
		row, ok := r.s.data.users[id]
		if !ok || row.CompanyID != companyID {
			return user.ErrUserNotFound
		}
		next := row.User
		if changes.FirstName != nil {
			next.FirstName = *changes.FirstName
		}
		if changes.LastName != nil {
			next.LastName = *changes.LastName
		}
		if changes.Role != nil {
			next.Role = *changes.Role
		}
		if err := fits(
			column{next.FirstName, validator.MaxNameLength},
			column{next.LastName, validator.MaxNameLength},
		); err != nil {
			return err
		}
		if changes.ManagerID.Set {
			next.ManagerID = copyString(changes.ManagerID.Value)
			if err := r.checkManager(next.ID, next.CompanyID, next.ManagerID); err != nil {
				return err
			}
		}
		next.UpdatedAt = r.s.now()

		r.s.data.users[id] = userRow{User: next, seq: row.seq}
		updated = next
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return updated, nil
}

func (r *userRepository) Deactivate(ctx context.Context, companyID, id string) error {
	return r.s.write(ctx, func() error {
		row, ok := r.s.data.users[id]
		if !ok || row.CompanyID != companyID {
			return user.ErrUserNotFound
		}
		row.IsActive = false
		row.UpdatedAt = r.s.now()
		r.s.data.users[id] = row
		return nil
	})
}

// companyRows returns the rows of one tenant. Callers hold the lock.
func (r *userRepository) companyRows(companyID string) []userRow {
	var rows []userRow
	for _, row := range r.s.data.users {
		if row.CompanyID == companyID {
			rows = append(rows, row)
		}
	}
	return rows
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
