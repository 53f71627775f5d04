package memory

import (
	"context"
	"sync"

	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
)

// Ensure FingerprintStore implements the interface.
var _ driven.FingerprintStore = (*FingerprintStore)(nil)

// FingerprintStore is an in-memory implementation of
// driven.FingerprintStore. State lasts for one process lifetime; use
// the sqlite-backed store when exact dedup must survive restarts.
type FingerprintStore struct {
	mu     sync.RWMutex
	hashes map[string]struct{}
}

// NewFingerprintStore creates a new in-memory fingerprint store.
func NewFingerprintStore() *FingerprintStore {
	return &FingerprintStore{
		hashes: make(map[string]struct{}),
	}
}

// SeenHash reports whether the strong hash was already recorded.
func (s *FingerprintStore) SeenHash(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hashes[hash]
	return ok, nil
}

// AddHash records a strong hash.
func (s *FingerprintStore) AddHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[hash] = struct{}{}
	return nil
}
