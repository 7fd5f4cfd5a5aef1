package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

// Claims is the verified payload of an access token.
type Claims struct {
	UserID    string
	Role      string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Service interface {
	GenerateAccessToken(userID string, role string) (token string, expiresAt int64, err error)
	// ParseAccessToken verifies signature, expiry and revocation.
	ParseAccessToken(ctx context.Context, token string) (Claims, error)
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	revoked               RevocationStore
	now                   func() time.Time
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration, revoked RevocationStore) *JWTService {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revoked:               revoked,
		now:                   time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID string, role string) (token string, expiresAt int64, err error) {
	now := j.now()
	expiresAt = now.Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseAccessToken(ctx context.Context, tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, ok := stringClaim(token, "user_id")
	if !ok || token.JwtID() == "" || token.Expiration().IsZero() {
		return Claims{}, ErrInvalidToken
	}
	role, _ := stringClaim(token, "role")

	revoked, err := j.revoked.IsRevoked(ctx, token.JwtID())
	if err != nil {
		return Claims{}, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return Claims{}, ErrTokenRevoked
	}

	return Claims{
		UserID:    userID,
		Role:      role,
		TokenID:   token.JwtID(),
		IssuedAt:  token.IssuedAt(),
		ExpiresAt: token.Expiration(),
	}, nil
}

// RevokeToken rejects tokenID until expiresAt, after which the token is
// invalid anyway.
func (j *JWTService) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if !expiresAt.After(j.now()) {
		return nil
	}
	return j.revoked.Revoke(ctx, tokenID, expiresAt)
}

func stringClaim(token jwt.Token, name string) (string, bool) {
	v, ok := token.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
