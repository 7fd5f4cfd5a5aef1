package auth

import (
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	CompanyName  string `json:"companyName"`
	Country      string `json:"country"`
	CurrencyCode string `json:"currencyCode"`
}

func (r *SignupRequest) Validate() error {
	var errs validator.ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"email", r.Email},
		{"password", r.Password},
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"companyName", r.CompanyName},
		{"country", r.Country},
		{"currencyCode", r.CurrencyCode},
	}
	for _, f := range required {
		if validator.IsEmpty(f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.field,
				Message: f.field + " is required",
			})
		}
	}

	if !validator.IsEmpty(r.Email) && !validator.IsValidEmail(user.NormalizeEmail(r.Email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}
	if len(r.Password) > validator.MaxPasswordBytes {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 bytes",
		})
	}
	if !validator.IsEmpty(r.CurrencyCode) && !validator.IsCurrencyCodeShape(r.CurrencyCode) {
		errs = append(errs, validator.ValidationError{
			Field:   "currencyCode",
			Message: "currencyCode must be three letters",
		})
	}
	errs = errs.CheckLength("email", r.Email, validator.MaxEmailLength)
	errs = errs.CheckLength("firstName", r.FirstName, validator.MaxNameLength)
	errs = errs.CheckLength("lastName", r.LastName, validator.MaxNameLength)
	errs = errs.CheckLength("companyName", r.CompanyName, validator.MaxCompanyNameLength)
	errs = errs.CheckLength("country", r.Country, validator.MaxCountryLength)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Session is an issued access token.
type Session struct {
	Token     string
	ExpiresAt int64
}

type SignupResult struct {
	User    user.User
	Company company.Company
	Session Session
}

type LoginResult struct {
	Profile user.UserWithCompany
	Session Session
}

// SessionUserResponse is the user payload of signup, login and profile.
type SessionUserResponse struct {
	ID        string                  `json:"id"`
	Email     string                  `json:"email"`
	FirstName string                  `json:"firstName"`
	LastName  string                  `json:"lastName"`
	Role      user.Role               `json:"role"`
	ManagerID *string                 `json:"managerId"`
	Company   company.CompanyResponse `json:"company"`
}

func NewSessionUserResponse(u user.User, c company.Company) SessionUserResponse {
	return SessionUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		ManagerID: u.ManagerID,
		Company:   company.NewCompanyResponse(c),
	}
}

// NewProfileResponse builds the payload from the session projection.
func NewProfileResponse(p user.UserWithCompany) SessionUserResponse {
	return NewSessionUserResponse(p.User, company.Company{
		ID:           p.CompanyID,
		Name:         p.CompanyName,
		Country:      p.Country,
		CurrencyCode: p.CurrencyCode,
	})
}

type TokenResponse struct {
	Message   string              `json:"message"`
	Token     string              `json:"token"`
	ExpiresAt int64               `json:"expiresAt"`
	User      SessionUserResponse `json:"user"`
}
