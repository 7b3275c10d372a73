// Package auth verifies bearer tokens and tracks tokens revoked by logout.
package auth

import (
	"context"
	"sync"
	"time"
)

// Revoker records revoked token ids until they expire.
type Revoker interface {
	// Revoke marks id as revoked until the given time.
	Revoke(ctx context.Context, id string, until time.Time) error
	// IsRevoked reports whether id is currently revoked.
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// MemoryRevoker keeps revocations in process memory. Expired entries are
// dropped lazily on access.
type MemoryRevoker struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

// NewMemoryRevoker returns an empty in-memory revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{now: time.Now, revoked: make(map[string]time.Time)}
}

func (m *MemoryRevoker) Revoke(ctx context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep()
	if !until.After(m.now()) {
		return nil
	}
	if cur, ok := m.revoked[id]; !ok || until.After(cur) {
		m.revoked[id] = until
	}
	return nil
}

func (m *MemoryRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.revoked[id]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.revoked, id)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevoker) sweep() {
	now := m.now()
	for id, until := range m.revoked {
		if !until.After(now) {
			delete(m.revoked, id)
		}
	}
}
