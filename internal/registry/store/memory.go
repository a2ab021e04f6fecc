package store

import (
	"context"
	"sync"
	"time"

	"echoid/internal/registry/derive"
	"echoid/pkg/platform/sentinel"
)

// InMemory keeps accounts in a mutex-guarded map. It favors clarity over
// performance and backs unit tests and single-node development.
//
// Holding the write lock across a whole Mutate call gives each account
// exactly one exclusive writer per transaction; fn runs on a private copy,
// so an fn error aborts with committed state never touched.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[derive.AccountID]*Account
}

// NewInMemory creates an empty in-memory account store.
func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[derive.AccountID]*Account)}
}

func (s *InMemory) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return sentinel.ErrConflict
	}

	now := time.Now()
	stored := account.Clone()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.accounts[account.ID] = stored
	return nil
}

func (s *InMemory) Get(_ context.Context, id derive.AccountID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return account.Clone(), nil
}

func (s *InMemory) Mutate(_ context.Context, id derive.AccountID, fn func(*Account) error) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now()
	s.accounts[id] = next
	return next.Clone(), nil
}
