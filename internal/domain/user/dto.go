package user

import (
	"time"

	"github.com/ledgerline/identity-core/internal/pkg/nullable"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

// CreateUserRequest is the admin request to add an employee or manager.
type CreateUserRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      string  `json:"role"`
	ManagerID *string `json:"managerId,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	errs := validateIdentity(r.Email, r.Password, r.FirstName, r.LastName)

	if validator.IsEmpty(r.Role) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role is required",
		})
	} else if !validator.IsInSlice(r.Role, []string{string(RoleEmployee), string(RoleManager)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: ErrRoleNotAssignable.Message,
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// NewAdmin is the first user of a freshly provisioned company.
type NewAdmin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (r *NewAdmin) Validate() error {
	if errs := validateIdentity(r.Email, r.Password, r.FirstName, r.LastName); len(errs) > 0 {
		return errs
	}
	return nil
}

func validateIdentity(email, password, firstName, lastName string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(NormalizeEmail(email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	if validator.IsEmpty(password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(password) > validator.MaxPasswordBytes {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 bytes",
		})
	}

	if validator.IsEmpty(firstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "firstName",
			Message: "firstName is required",
		})
	}
	if validator.IsEmpty(lastName) {
		errs = append(errs, validator.ValidationError{
			Field:   "lastName",
			Message: "lastName is required",
		})
	}

	errs = errs.CheckLength("email", email, validator.MaxEmailLength)
	errs = errs.CheckLength("firstName", firstName, validator.MaxNameLength)
	errs = errs.CheckLength("lastName", lastName, validator.MaxNameLength)

	return errs
}

// UpdateUserRequest is a partial update. Omitted fields keep their value;
// managerId may be set to null to clear the manager.
type UpdateUserRequest struct {
	FirstName *string                `json:"firstName,omitempty"`
	LastName  *string                `json:"lastName,omitempty"`
	Role      *string                `json:"role,omitempty"`
	ManagerID nullable.Field[string] `json:"managerId"`
}

// Validate checks the name fields only; role and manager rules need stored
// state and are enforced by the directory.
func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{
			Field:   "firstName",
			Message: "firstName must not be empty",
		})
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs = append(errs, validator.ValidationError{
			Field:   "lastName",
			Message: "lastName must not be empty",
		})
	}
	if r.FirstName != nil {
		errs = errs.CheckLength("firstName", *r.FirstName, validator.MaxNameLength)
	}
	if r.LastName != nil {
		errs = errs.CheckLength("lastName", *r.LastName, validator.MaxNameLength)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Role      Role    `json:"role"`
	ManagerID *string `json:"managerId"`
	IsActive  bool    `json:"isActive"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
	}
}

// MemberResponse is a directory row with the manager's display name.
type MemberResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             Role      `json:"role"`
	ManagerID        *string   `json:"managerId"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	ManagerFirstName *string   `json:"managerFirstName"`
	ManagerLastName  *string   `json:"managerLastName"`
}

func NewMemberResponse(m Member) MemberResponse {
	return MemberResponse{
		ID:               m.ID,
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Role:             m.Role,
		ManagerID:        m.ManagerID,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		ManagerFirstName: m.ManagerFirstName,
		ManagerLastName:  m.ManagerLastName,
	}
}

type ManagerResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func NewManagerResponse(m ManagerOption) ManagerResponse {
	return ManagerResponse(m)
}
