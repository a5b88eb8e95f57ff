package userstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/inkwellhq/inkwell/pkg/auth"
)

// MemoryStore is an in-memory auth.Storage used by tests and local tooling.
// It enforces the same uniqueness constraints as the MongoDB store.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*auth.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[uuid.UUID]*auth.Account)}
}

func (s *MemoryStore) Create(ctx context.Context, acct *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Email == acct.Email {
			return auth.ErrEmailTaken
		}
		if acct.GoogleID != "" && existing.GoogleID == acct.GoogleID {
			return auth.ErrEmailTaken
		}
	}

	cp := *acct
	s.accounts[acct.ID] = &cp
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, acct *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[acct.ID]; !ok {
		return auth.ErrAccountNotFound
	}

	cp := *acct
	s.accounts[acct.ID] = &cp
	return nil
}

func (s *MemoryStore) ByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (s *MemoryStore) ByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.findOne(func(a *auth.Account) bool { return a.Email == email })
}

func (s *MemoryStore) ByGoogleID(ctx context.Context, googleID string) (*auth.Account, error) {
	if googleID == "" {
		return nil, auth.ErrAccountNotFound
	}
	return s.findOne(func(a *auth.Account) bool { return a.GoogleID == googleID })
}

func (s *MemoryStore) ByResetTokenHash(ctx context.Context, hash string) (*auth.Account, error) {
	if hash == "" {
		return nil, auth.ErrAccountNotFound
	}
	return s.findOne(func(a *auth.Account) bool { return a.ResetTokenHash == hash })
}

func (s *MemoryStore) findOne(match func(*auth.Account) bool) (*auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.accounts {
		if match(acct) {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

// Compile-time interface assertion
var _ auth.Storage = (*MemoryStore)(nil)
