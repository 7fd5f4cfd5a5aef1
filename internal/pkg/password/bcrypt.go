package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

var ErrMismatch = errors.New("password does not match")

// Hasher is a one-way password hash with a verify counterpart.
type Hasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, hash, plain string) error
}

// BcryptHasher hashes with bcrypt. At most `concurrency` hash or compare
// operations run at once; callers wait for a slot until their context ends.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewBcryptHasher(cost int, concurrency int64) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &BcryptHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(concurrency),
	}
}

func (b *BcryptHasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer b.sem.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (b *BcryptHasher) Compare(ctx context.Context, hash, plain string) error {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer b.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("failed to compare password: %w", err)
}
