package company

import (
	"strings"

	"github.com/ledgerline/identity-core/internal/pkg/validator"
	"golang.org/x/text/currency"
)

type CompanyResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Country      string `json:"country"`
	CurrencyCode string `json:"currencyCode"`
}

func NewCompanyResponse(c Company) CompanyResponse {
	return CompanyResponse{
		ID:           c.ID,
		Name:         c.Name,
		Country:      c.Country,
		CurrencyCode: c.CurrencyCode,
	}
}

// NormalizeCurrencyCode upper-cases a three-letter code. Codes known to the
// ISO-4217 registry are returned in their canonical form; other three-letter
// codes (GGP, FOK, ...) are kept as given.
func NormalizeCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !validator.IsCurrencyCodeShape(code) {
		return "", ErrInvalidCurrencyCode
	}
	if unit, err := currency.ParseISO(code); err == nil {
		return unit.String(), nil
	}
	return code, nil
}
