package notification

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
	mu    sync.RWMutex
	items map[bson.ObjectID]Notification
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[bson.ObjectID]Notification)}
}

func (s *MemoryStore) Create(_ context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	s.items[n.ID] = *n
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id bson.ObjectID) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	return &n, nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Notification], error) {
	s.mu.RLock()
	matched := make([]Notification, 0, len(s.items))
	for _, n := range s.items {
		if filter.match(n) {
			matched = append(matched, n)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return mongo.PageOf(matched, params), nil
}

func (s *MemoryStore) Delete(_ context.Context, id bson.ObjectID) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.items[id]
	if !ok {
		return nil, ErrNotificationNotFound
	}
	delete(s.items, id)
	return &n, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, user bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changed int64
	for id, n := range s.items {
		if n.User == user && n.Status == StatusUnread {
			n.Status = StatusRead
			s.items[id] = n
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, user bson.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, n := range s.items {
		if n.User == user && n.Status == StatusUnread {
			count++
		}
	}
	return count, nil
}
