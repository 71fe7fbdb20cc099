package payment

import (
	"context"
	"slices"
	"sync"
	"time"
)

type accountKey struct {
	user string
	typ  AccountType
}

// MemoryAccountStore is an in-memory AccountStore for tests and local runs.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[accountKey]PaymentAccount
	now      func() time.Time
}

// NewMemoryAccountStore returns an empty in-memory AccountStore.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[accountKey]PaymentAccount),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryAccountStore) Save(_ context.Context, acc *PaymentAccount) error {
	if !acc.Type.Valid() {
		return ErrInvalidAccountType
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := accountKey{acc.UserID, acc.Type}
	for k, existing := range s.accounts {
		if k != key && existing.AccountID == acc.AccountID {
			return ErrAccountIDConflict
		}
	}

	now := s.now()
	acc.UpdatedAt = now
	acc.CreatedAt = now
	if existing, ok := s.accounts[key]; ok {
		acc.CreatedAt = existing.CreatedAt
	}
	if len(acc.Account) == 0 {
		acc.Account = []byte(`{}`)
	}
	stored := *acc
	stored.Account = slices.Clone(acc.Account)
	s.accounts[key] = stored
	return nil
}

func (s *MemoryAccountStore) Get(_ context.Context, userID string, typ AccountType) (*PaymentAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountKey{userID, typ}]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(acc), nil
}

func (s *MemoryAccountStore) GetByAccountID(_ context.Context, accountID string) (*PaymentAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.AccountID == accountID {
			return cloneAccount(acc), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (s *MemoryAccountStore) Delete(_ context.Context, userID string, typ AccountType) (*PaymentAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountKey{userID, typ}
	acc, ok := s.accounts[key]
	if !ok {
		return nil, ErrAccountNotFound
	}
	delete(s.accounts, key)
	return cloneAccount(acc), nil
}

func cloneAccount(acc PaymentAccount) *PaymentAccount {
	acc.Account = slices.Clone(acc.Account)
	return &acc
}
