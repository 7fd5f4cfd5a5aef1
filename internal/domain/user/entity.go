package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Company administrator, created at signup
	RoleManager  Role = "manager"  // Can be assigned as someone's manager
	RoleEmployee Role = "employee" // Regular employee
)

// ParseRole converts s into a Role, rejecting anything outside the hierarchy.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CompanyID    string
	ManagerID    *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user administers their company
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManage checks if user is a valid manager assignment target
func (u *User) CanManage() bool {
	return u.IsActive && (u.Role == RoleManager || u.Role == RoleAdmin)
}

// UserWithCompany is the session projection: an active user joined with
// their company.
type UserWithCompany struct {
	User
	CompanyName  string
	Country      string
	CurrencyCode string
}

// Member is a directory row: a user plus their manager's display name.
type Member struct {
	User
	ManagerFirstName *string
	ManagerLastName  *string
}

type ManagerOption struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
