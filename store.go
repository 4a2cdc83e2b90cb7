package walletauth

import (
	"context"
	"sync"
)

// SessionStore caches the most recently issued token so callers can skip a
// full re-authentication. The store is opaque key-value: it performs no
// validation, and callers must verify a cached token before reuse.
type SessionStore interface {
	// Get returns the cached token, or false when none is cached.
	Get(ctx context.Context) (string, bool, error)
	// Put replaces the cached token.
	Put(ctx context.Context, token string) error
	// Clear drops the cached token.
	Clear(ctx context.Context) error
}

// MemoryStore is the default in-process SessionStore. Safe for concurrent
// use.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements SessionStore.
func (s *MemoryStore) Get(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.set, nil
}

// Put implements SessionStore.
func (s *MemoryStore) Put(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.set = true
	return nil
}

// Clear implements SessionStore.
func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.set = false
	return nil
}
