package customer

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

// MemoryStore is a mutex-guarded Store for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[bson.ObjectID]Customer
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{customers: make(map[bson.ObjectID]Customer)}
}

func (s *MemoryStore) Create(_ context.Context, c *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.customers {
		if existing.User == c.User {
			return ErrCustomerExists
		}
	}
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	s.customers[c.ID] = *c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id bson.ObjectID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return &c, nil
}

func (s *MemoryStore) GetByUser(_ context.Context, userID bson.ObjectID) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.User == userID {
			return &c, nil
		}
	}
	return nil, ErrCustomerNotFound
}

func (s *MemoryStore) List(_ context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Customer], error) {
	s.mu.RLock()
	matched := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if filter.match(c) {
			matched = append(matched, c)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Customer) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return mongo.PageOf(matched, params), nil
}

func (s *MemoryStore) Delete(_ context.Context, id bson.ObjectID) (*Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	delete(s.customers, id)
	return &c, nil
}
