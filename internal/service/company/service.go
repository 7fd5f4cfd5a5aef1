package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/fixtures"
)

type ProvisionerImpl struct {
	company.CompanyRepository
}

func NewProvisioner(companyRepository company.CompanyRepository) company.Provisioner {
	return &ProvisionerImpl{CompanyRepository: companyRepository}
}

// Provision implements company.Provisioner.
func (p *ProvisionerImpl) Provision(ctx context.Context, name, country, currencyCode string) (company.Company, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)
	if name == "" {
		return company.Company{}, company.ErrInvalidCompanyName
	}
	if country == "" {
		return company.Company{}, company.ErrInvalidCountry
	}
	code, err := company.NormalizeCurrencyCode(currencyCode)
	if err != nil {
		return company.Company{}, err
	}

	created, err := p.CompanyRepository.Create(ctx, company.Company{
		Name:         name,
		Country:      country,
		CurrencyCode: code,
	})
	if err != nil {
		return company.Company{}, fmt.Errorf("failed to create company: %w", err)
	}

	slog.Info("Company provisioned", "company_id", created.ID, "currency", created.CurrencyCode)
	return created, nil
}

// SeedDefaultCategories implements company.Provisioner. It is not idempotent.
func (p *ProvisionerImpl) SeedDefaultCategories(ctx context.Context, companyID string) error {
	categories := fixtures.DefaultExpenseCategories(companyID)
	if err := p.CompanyRepository.CreateCategories(ctx, categories); err != nil {
		return fmt.Errorf("failed to seed expense categories: %w", err)
	}
	slog.Info("Seeded default expense categories", "company_id", companyID, "count", len(categories))
	return nil
}
