package fixtures

import "github.com/ledgerline/identity-core/internal/domain/company"

// DefaultExpenseCategories returns the categories every new company starts
// with, in display order.
func DefaultExpenseCategories(companyID string) []company.ExpenseCategory {
	return []company.ExpenseCategory{
		{CompanyID: companyID, Name: "Travel", Description: "Business travel expenses"},
		{CompanyID: companyID, Name: "Meals", Description: "Client meetings and meals"},
		{CompanyID: companyID, Name: "Office Supplies", Description: "Office equipment and supplies"},
		{CompanyID: companyID, Name: "Technology", Description: "Software and hardware"},
		{CompanyID: companyID, Name: "Training", Description: "Professional development"},
	}
}
