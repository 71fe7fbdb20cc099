package user

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var now = func() time.Time { return time.Now().UTC() }

// MemoryDirectory is an in-memory Directory for tests and local development.
// PushTokensMatching understands only an "_id" filter of the form
// {"_id": {"$in": [...]}} or {"_id": id}; any other filter matches everyone.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[bson.ObjectID]User
}

// NewMemoryDirectory seeds the directory with users. Zero ids are assigned.
func NewMemoryDirectory(users ...User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[bson.ObjectID]User, len(users))}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		u.PushTokens = slices.Clone(u.PushTokens)
		d.users[u.ID] = u
	}
	return d
}

func (d *MemoryDirectory) Exists(_ context.Context, id bson.ObjectID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[id]
	return ok, nil
}

func (d *MemoryDirectory) Get(_ context.Context, id bson.ObjectID) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.PushTokens = slices.Clone(u.PushTokens)
	return &u, nil
}

func (d *MemoryDirectory) PushTokens(_ context.Context, id bson.ObjectID) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return slices.Clone(u.PushTokens), nil
}

func (d *MemoryDirectory) PushTokensMatching(_ context.Context, filter bson.M) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	match := idMatcher(filter)
	users := make([]User, 0, len(d.users))
	for _, u := range d.users {
		if match(u.ID) {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.ID.Hex(), b.ID.Hex()) })
	return collectTokens(users), nil
}

func (d *MemoryDirectory) AddPushToken(_ context.Context, id bson.ObjectID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if !slices.Contains(u.PushTokens, token) {
		u.PushTokens = append(u.PushTokens, token)
	}
	d.users[id] = u
	return nil
}

func (d *MemoryDirectory) RemovePushTokens(_ context.Context, tokens ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, u := range d.users {
		u.PushTokens = slices.DeleteFunc(u.PushTokens, func(t string) bool {
			return slices.Contains(tokens, t)
		})
		d.users[id] = u
	}
	return nil
}

func idMatcher(filter bson.M) func(bson.ObjectID) bool {
	switch v := filter["_id"].(type) {
	case bson.ObjectID:
		return func(id bson.ObjectID) bool { return id == v }
	case bson.M:
		if in, ok := v["$in"].([]bson.ObjectID); ok {
			return func(id bson.ObjectID) bool { return slices.Contains(in, id) }
		}
	}
	return func(bson.ObjectID) bool { return true }
}
