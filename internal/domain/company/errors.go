package company

import "github.com/ledgerline/identity-core/internal/pkg/apperror"

var (
	ErrCompanyNotFound     = apperror.New(apperror.KindNotFound, "company not found")
	ErrInvalidCompanyName  = apperror.New(apperror.KindValidation, "company name cannot be empty")
	ErrInvalidCountry      = apperror.New(apperror.KindValidation, "country cannot be empty")
	ErrInvalidCurrencyCode = apperror.New(apperror.KindValidation, "currency code must be three letters")
)
