package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/database"
)

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.role,
	u.company_id, u.manager_id, u.is_active, u.created_at, u.updated_at`

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func scanUser(row pgx.Row, extra ...any) (user.User, error) {
	var u user.User
	dest := append([]any{
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.CompanyID,
		&u.ManagerID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	}, extra...)
	err := row.Scan(dest...)
	return u, err
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users AS u (email, password_hash, first_name, last_name, role, company_id, manager_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(q.QueryRow(ctx, query,
		newUser.Email,
		newUser.PasswordHash,
		newUser.FirstName,
		newUser.LastName,
		string(newUser.Role),
		newUser.CompanyID,
		newUser.ManagerID,
	))
	if err != nil {
		return user.User{}, mapPostgresError(err)
	}
	return created, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return found, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	found, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return found, nil
}

// ExistsByEmail implements user.UserRepository.
func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, mapPostgresError(err)
	}
	return exists, nil
}

// GetActiveWithCompany implements user.UserRepository.
func (r *userRepositoryImpl) GetActiveWithCompany(ctx context.Context, id string) (user.UserWithCompany, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `, c.name, c.country, c.currency_code
		FROM users u
		JOIN companies c ON c.id = u.company_id
		WHERE u.id = $1 AND u.is_active = TRUE
	`

	var p user.UserWithCompany
	found, err := scanUser(q.QueryRow(ctx, query, id), &p.CompanyName, &p.Country, &p.CurrencyCode)
	if err != nil {
		return user.UserWithCompany{}, notFound(err, user.ErrUserNotFound)
	}
	p.User = found
	return p, nil
}

const memberQuery = `
	SELECT ` + userColumns + `, m.first_name, m.last_name
	FROM users u
	LEFT JOIN users m ON m.id = u.manager_id
	WHERE u.company_id = $1`

// GetMember implements user.UserRepository.
func (r *userRepositoryImpl) GetMember(ctx context.Context, companyID, id string) (user.Member, error) {
	q := GetQuerier(ctx, r.db)

	var m user.Member
	found, err := scanUser(q.QueryRow(ctx, memberQuery+` AND u.id = $2`, companyID, id),
		&m.ManagerFirstName, &m.ManagerLastName)
	if err != nil {
		return user.Member{}, notFound(err, user.ErrUserNotFound)
	}
	m.User = found
	return m, nil
}

// ListByCompany implements user.UserRepository.
func (r *userRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]user.Member, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, memberQuery+` ORDER BY u.created_at DESC, u.id DESC`, companyID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	members := []user.Member{}
	for rows.Next() {
		var m user.Member
		found, err := scanUser(rows, &m.ManagerFirstName, &m.ManagerLastName)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.User = found
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}
	return members, nil
}

// ListManagers implements user.UserRepository.
func (r *userRepositoryImpl) ListManagers(ctx context.Context, companyID string) ([]user.ManagerOption, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, first_name, last_name, email
		FROM users
		WHERE company_id = $1
		  AND role IN ('manager', 'admin')
		  AND is_active = TRUE
		ORDER BY first_name, last_name
	`
	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	managers := []user.ManagerOption{}
	for rows.Next() {
		var m user.ManagerOption
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email); err != nil {
			return nil, fmt.Errorf("scan manager: %w", err)
		}
		managers = append(managers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPostgresError(err)
	}
	return managers, nil
}

// Update implements user.UserRepository.
func (r *userRepositoryImpl) Update(ctx context.Context, companyID, id string, changes user.Changes) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var role *string
	if changes.Role != nil {
		s := string(*changes.Role)
		role = &s
	}

	query := `
		UPDATE users AS u
		SET first_name = COALESCE($3, u.first_name),
		    last_name  = COALESCE($4, u.last_name),
		    role       = COALESCE($5, u.role),
		    manager_id = CASE WHEN $6::boolean THEN $7::uuid ELSE u.manager_id END,
		    updated_at = NOW()
		WHERE u.id = $1 AND u.company_id = $2
		RETURNING ` + userColumns

	updated, err := scanUser(q.QueryRow(ctx, query,
		id,
		companyID,
		changes.FirstName,
		changes.LastName,
		role,
		changes.ManagerID.Set,
		changes.ManagerID.Value,
	))
	if err != nil {
		return user.User{}, notFound(err, user.ErrUserNotFound)
	}
	return updated, nil
}

// Deactivate implements user.UserRepository.
func (r *userRepositoryImpl) Deactivate(ctx context.Context, companyID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND company_id = $2`,
		id, companyID)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
