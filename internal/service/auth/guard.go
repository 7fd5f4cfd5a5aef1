package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ledgerline/identity-core/internal/domain/auth"
	"github.com/ledgerline/identity-core/internal/domain/user"
	"github.com/ledgerline/identity-core/internal/pkg/jwt"
)

type GuardImpl struct {
	jwtService jwt.Service
	directory  user.Directory
}

func NewGuard(jwtService jwt.Service, directory user.Directory) auth.Guard {
	return &GuardImpl{jwtService: jwtService, directory: directory}
}

// Authenticate implements auth.Guard. The user is re-read on every call so a
// deactivation or role change applies to tokens already issued.
func (g *GuardImpl) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	if token == "" {
		return auth.Principal{}, auth.ErrUnauthenticated
	}

	claims, err := g.jwtService.ParseAccessToken(ctx, token)
	if errors.Is(err, jwt.ErrInvalidToken) || errors.Is(err, jwt.ErrTokenRevoked) {
		return auth.Principal{}, auth.ErrUnauthenticated
	}
	if err != nil {
		return auth.Principal{}, err
	}

	profile, err := g.directory.FindActiveByIDWithCompany(ctx, claims.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return auth.Principal{}, auth.ErrUnauthenticated
	}
	if err != nil {
		return auth.Principal{}, fmt.Errorf("failed to load principal: %w", err)
	}

	return auth.Principal{
		UserID:    profile.ID,
		CompanyID: profile.CompanyID,
		Role:      profile.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt.Unix(),
		Profile:   profile,
	}, nil
}

// Authorize implements auth.Guard.
func (g *GuardImpl) Authorize(principal auth.Principal, allowed ...user.Role) error {
	if slices.Contains(allowed, principal.Role) {
		return nil
	}
	return auth.ErrInsufficientRole
}
