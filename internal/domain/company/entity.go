package company

import "time"

// Company is a tenant. It is created once at signup and never modified.
type Company struct {
	ID           string
	Name         string
	Country      string
	CurrencyCode string
	CreatedAt    time.Time
}

type ExpenseCategory struct {
	ID          string
	CompanyID   string
	Name        string
	Description string
	CreatedAt   time.Time
}
