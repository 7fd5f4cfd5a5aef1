package postgresql

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/database"
)

const (
	constraintUsersEmail        = "users_email_key"
	constraintUsersManager      = "users_manager_same_company_fkey"
	constraintUsersNotSelf      = "users_manager_not_self_check"
	constraintUsersCompany      = "users_company_id_fkey"
	constraintCategoriesCompany = "expense_categories_company_id_fkey"
)

// mapPostgresError maps PostgreSQL-specific errors to domain sentinel errors.
// Returns the original error if it's not a PostgreSQL error or doesn't match known patterns.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == constraintUsersEmail {
			return user.ErrEmailExists
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.ForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintUsersManager:
			return user.ErrInvalidManager
		case constraintUsersCompany, constraintCategoriesCompany:
			return company.ErrCompanyNotFound
		}
		return fmt.Errorf("foreign key violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.CheckViolation:
		if pgErr.ConstraintName == constraintUsersNotSelf {
			return user.ErrSelfManager
		}
		return fmt.Errorf("check constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.StringDataRightTruncationDataException:
		return fmt.Errorf("%w: %s", database.ErrValueTooLong, pgErr.Message)

	case pgerrcode.InvalidTextRepresentation:
		// malformed uuid literal
		return fmt.Errorf("invalid identifier: %w", err)

	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)

	default:
		return fmt.Errorf("postgres error [%s]: %s (detail: %s, hint: %s): %w",
			pgErr.Code, pgErr.Message, pgErr.Detail, pgErr.Hint, err)
	}
}

// notFound translates an empty result into sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return mapPostgresError(err)
}
