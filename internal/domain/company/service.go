package company

import "context"

// Provisioner creates tenants. Both operations join the caller's transaction
// when one is carried in ctx.
type Provisioner interface {
	Provision(ctx context.Context, name, country, currencyCode string) (Company, error)
	SeedDefaultCategories(ctx context.Context, companyID string) error
}
