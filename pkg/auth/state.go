package auth

import (
	"context"
	"sync"
	"time"
)

// StateStore persists single-use OAuth state tokens with a TTL.
type StateStore interface {
	// Store saves the state token; it expires after ttl.
	Store(ctx context.Context, state string, ttl time.Duration) error
	// Consume removes the state token, returning ErrStateNotFound if it is
	// unknown or already expired. A state can be consumed at most once.
	Consume(ctx context.Context, state string) error
}

// MemoryStateStore is an in-process StateStore for single-instance
// deployments and tests.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

func (s *MemoryStateStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)

	if time.Now().After(expiresAt) {
		return ErrStateNotFound
	}
	return nil
}
