package jwt

import (
	"context"
	"sync"
	"time"
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationStore keeps revoked ids in process memory. Suitable for a
// single instance only.
type MemoryRevocationStore struct {
	mu            sync.RWMutex
	revokedTokens map[string]int64
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revokedTokens: make(map[string]int64)}
}

func (m *MemoryRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().Unix()
	for id, exp := range m.revokedTokens {
		if exp <= now {
			delete(m.revokedTokens, id)
		}
	}
	m.revokedTokens[tokenID] = until.Unix()
	return nil
}

func (m *MemoryRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, revoked := m.revokedTokens[tokenID]
	return revoked && exp > time.Now().Unix(), nil
}
