package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvolkovs/filevault/internal/common"
)

// keyPrefix namespaces session entries in the shared key-value store.
const keyPrefix = "auth_"

// tokenBytes is the number of random bytes per token; the hex form is
// twice as long.
const tokenBytes = 32

// Manager maps opaque tokens to user ids with a fixed TTL. Resolving a
// token does not refresh its TTL, so expiry stays predictable.
type Manager struct {
	kv  KV
	ttl time.Duration
}

// NewManager builds a Manager over kv with the given session TTL.
func NewManager(kv KV, ttl time.Duration) *Manager {
	return &Manager{kv: kv, ttl: ttl}
}

// Create issues a fresh token for userID and stores it with the TTL.
func (m *Manager) Create(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	if err := m.kv.Set(ctx, keyPrefix+token, userID, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id behind token. Missing, empty and expired
// tokens all come back as common.ErrUnauthorized.
func (m *Manager) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrUnauthorized
	}
	userID, err := m.kv.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnauthorized
		}
		return "", err
	}
	return userID, nil
}

// Destroy revokes token. Deleting an absent token is not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.kv.Del(ctx, keyPrefix+token)
}
