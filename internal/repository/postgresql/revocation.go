package postgresql

import (
	"context"
	"time"

	"github.com/ledgerline/identity-core/internal/pkg/database"
	"github.com/ledgerline/identity-core/internal/pkg/jwt"
)

type revocationRepositoryImpl struct {
	db *database.DB
}

// NewRevocationRepository stores revoked token ids in revoked_tokens.
func NewRevocationRepository(db *database.DB) jwt.RevocationStore {
	return &revocationRepositoryImpl{db: db}
}

func (r *revocationRepositoryImpl) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO revoked_tokens (token_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_id) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, tokenID, until.UTC()); err != nil {
		return mapPostgresError(err)
	}

	// expired rows can never match a valid token
	_, err := q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < NOW()`)
	return mapPostgresError(err)
}

func (r *revocationRepositoryImpl) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var revoked bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE token_id = $1 AND expires_at > NOW())`, tokenID,
	).Scan(&revoked)
	if err != nil {
		return false, mapPostgresError(err)
	}
	return revoked, nil
}
