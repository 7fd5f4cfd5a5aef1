package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/pkg/database"
)

type companyRepositoryImpl struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepositoryImpl{db: db}
}

// Create implements company.CompanyRepository.
func (c *companyRepositoryImpl) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO companies (name, country, currency_code)
		VALUES ($1, $2, $3)
		RETURNING id, name, country, currency_code, created_at
	`

	var created company.Company
	err := q.QueryRow(ctx, query, newCompany.Name, newCompany.Country, newCompany.CurrencyCode).Scan(
		&created.ID,
		&created.Name,
		&created.Country,
		&created.CurrencyCode,
		&created.CreatedAt,
	)
	if err != nil {
		return company.Company{}, mapPostgresError(err)
	}
	return created, nil
}

// CreateCategories implements company.CompanyRepository. All rows go out in
// one batch on the caller's connection.
func (c *companyRepositoryImpl) CreateCategories(ctx context.Context, categories []company.ExpenseCategory) error {
	q := GetQuerier(ctx, c.db)

	batch := &pgx.Batch{}
	for _, cat := range categories {
		batch.Queue(
			`INSERT INTO expense_categories (company_id, name, description) VALUES ($1, $2, $3)`,
			cat.CompanyID, cat.Name, cat.Description,
		)
	}

	br := q.SendBatch(ctx, batch)
	for range categories {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapPostgresError(err)
		}
	}
	return mapPostgresError(br.Close())
}
