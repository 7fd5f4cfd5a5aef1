package company

import "context"

type CompanyRepository interface {
	Create(ctx context.Context, newCompany Company) (Company, error)
	CreateCategories(ctx context.Context, categories []ExpenseCategory) error
}
