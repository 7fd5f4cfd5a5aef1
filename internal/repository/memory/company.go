package memory

import (
	"context"

	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/pkg/validator"
)

type companyRepository struct {
	s *Store
}

func NewCompanyRepository(s *Store) company.CompanyRepository {
	return &companyRepository{s: s}
}

func (r *companyRepository) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	var created company.Company
	err := r.s.write(ctx, func() error {
		if err := fits(
			column{newCompany.Name, validator.MaxCompanyNameLength},
			column{newCompany.Country, validator.MaxCountryLength},
		); err != nil {
			return err
		}
		created = newCompany
		created.ID = newID()
		created.CreatedAt = r.s.now()
		r.s.data.companies[created.ID] = created
		return nil
	})
	return created, err
}

func (r *companyRepository) CreateCategories(ctx context.Context, categories []company.ExpenseCategory) error {
	return r.s.write(ctx, func() error {
		for _, c := range categories {
			if _, ok := r.s.data.companies[c.CompanyID]; !ok {
				return company.ErrCompanyNotFound
			}
		}
		for _, c := range categories {
			c.ID = newID()
			c.CreatedAt = r.s.now()
			r.s.data.categories = append(r.s.data.categories, c)
		}
		return nil
	})
}
