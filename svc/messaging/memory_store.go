package messaging

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/text/cases"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/svc/user"
)

// ProfileReader resolves counterpart profiles for conversation listings.
type ProfileReader interface {
	Get(ctx context.Context, id bson.ObjectID) (*user.User, error)
}

type memoryDB struct {
	mu            sync.RWMutex
	conversations map[bson.ObjectID]Conversation
	pairs         map[string]bson.ObjectID
	messages      map[bson.ObjectID]Message
}

// MemoryConversationStore and MemoryMessageStore share one memoryDB so
// listings can join messages the way the Mongo pipeline does.
type MemoryConversationStore struct {
	db       *memoryDB
	profiles ProfileReader
}

// MemoryMessageStore is the message half of NewMemoryStores.
type MemoryMessageStore struct {
	db *memoryDB
}

// NewMemoryStores returns linked in-memory stores for tests. A nil profiles
// reader leaves Counterpart unset in listings.
func NewMemoryStores(profiles ProfileReader) (*MemoryConversationStore, *MemoryMessageStore) {
	db := &memoryDB{
		conversations: make(map[bson.ObjectID]Conversation),
		pairs:         make(map[string]bson.ObjectID),
		messages:      make(map[bson.ObjectID]Message),
	}
	return &MemoryConversationStore{db: db, profiles: profiles}, &MemoryMessageStore{db: db}
}

func (s *MemoryConversationStore) FindOrCreate(ctx context.Context, from, to bson.ObjectID, at time.Time) (*Conversation, bool, error) {
	key := PairKey(from, to)
	return resolvePair(ctx,
		func(ctx context.Context) (*Conversation, error) {
			c, err := s.FindByPair(ctx, from, to)
			if err == nil {
				return c, nil
			}
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		},
		func(context.Context) (*Conversation, error) {
			s.db.mu.Lock()
			defer s.db.mu.Unlock()
			if _, taken := s.db.pairs[key]; taken {
				return nil, errDuplicatePair
			}
			c := Conversation{
				ID:        bson.NewObjectID(),
				UserFrom:  from,
				UserTo:    to,
				PairKey:   key,
				Status:    StatusPending,
				CreatedAt: at,
				UpdatedAt: at,
			}
			s.db.conversations[c.ID] = c
			s.db.pairs[key] = c.ID
			return &c, nil
		},
	)
}

func (s *MemoryConversationStore) Get(_ context.Context, id bson.ObjectID) (*Conversation, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	c, ok := s.db.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	return &c, nil
}

func (s *MemoryConversationStore) FindByPair(ctx context.Context, a, b bson.ObjectID) (*Conversation, error) {
	s.db.mu.RLock()
	id, ok := s.db.pairs[PairKey(a, b)]
	s.db.mu.RUnlock()
	if !ok {
		return nil, ErrConversationNotFound
	}
	return s.Get(ctx, id)
}

func (s *MemoryConversationStore) SetStatus(_ context.Context, id bson.ObjectID, from, to ConversationStatus, at time.Time) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.conversations[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	s.db.conversations[id] = c
	return true, nil
}

func (s *MemoryConversationStore) SetLastMessage(_ context.Context, id bson.ObjectID, msg *bson.ObjectID, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	if msg != nil {
		ref := *msg
		msg = &ref
	}
	c.LastMessage = msg
	c.UpdatedAt = at
	s.db.conversations[id] = c
	return nil
}

func (s *MemoryConversationStore) List(ctx context.Context, q ConversationQuery) (mongo.Page[ConversationSummary], error) {
	s.db.mu.RLock()
	rows := make([]ConversationSummary, 0)
	for _, c := range s.db.conversations {
		if !c.Has(q.User) {
			continue
		}
		row := ConversationSummary{Conversation: c}
		if c.LastMessage != nil {
			if m, ok := s.db.messages[*c.LastMessage]; ok {
				row.LastMessageObj = &m
			}
		}
		rows = append(rows, row)
	}
	s.db.mu.RUnlock()

	if s.profiles != nil {
		for i := range rows {
			if u, err := s.profiles.Get(ctx, rows[i].Conversation.Counterpart(q.User)); err == nil {
				rows[i].Counterpart = u
			}
		}
	}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		fold := cases.Fold()
		needle := fold.String(kw)
		rows = slices.DeleteFunc(rows, func(r ConversationSummary) bool {
			if r.LastMessageObj != nil && strings.Contains(fold.String(r.LastMessageObj.Text), needle) {
				return false
			}
			return r.Counterpart == nil || !strings.Contains(fold.String(r.Counterpart.Name), needle)
		})
	}

	slices.SortFunc(rows, func(a, b ConversationSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return mongo.PageOf(rows, q.PageParams), nil
}

func (s *MemoryConversationStore) Delete(_ context.Context, id bson.ObjectID) (*Conversation, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	delete(s.db.conversations, id)
	delete(s.db.pairs, c.PairKey)
	return &c, nil
}

func (s *MemoryMessageStore) Create(_ context.Context, m *Message) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = bson.NewObjectID()
	}
	stored := *m
	stored.Attachments = slices.Clone(m.Attachments)
	s.db.messages[m.ID] = stored
	return nil
}

func (s *MemoryMessageStore) Get(_ context.Context, id bson.ObjectID) (*Message, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	m, ok := s.db.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return &m, nil
}

func (s *MemoryMessageStore) List(_ context.Context, conversation bson.ObjectID, params mongo.PageParams) (mongo.Page[Message], error) {
	s.db.mu.RLock()
	msgs := s.byConversation(conversation)
	s.db.mu.RUnlock()
	return mongo.PageOf(msgs, params), nil
}

func (s *MemoryMessageStore) MarkRead(_ context.Context, conversation, recipient bson.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var changed int64
	for id, m := range s.db.messages {
		if m.Conversation == conversation && m.UserTo == recipient && m.Status == MessageSent {
			m.Status = MessageRead
			s.db.messages[id] = m
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryMessageStore) Delete(_ context.Context, id bson.ObjectID) (*Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m, ok := s.db.messages[id]
	if !ok {
		return nil, ErrMessageNotFound
	}
	delete(s.db.messages, id)
	return &m, nil
}

func (s *MemoryMessageStore) DeleteByConversation(_ context.Context, conversation bson.ObjectID) ([]Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	msgs := s.byConversation(conversation)
	for _, m := range msgs {
		delete(s.db.messages, m.ID)
	}
	return msgs, nil
}

// byConversation returns the conversation's messages newest first. Callers
// hold the lock.
func (s *MemoryMessageStore) byConversation(conversation bson.ObjectID) []Message {
	msgs := make([]Message, 0)
	for _, m := range s.db.messages {
		if m.Conversation == conversation {
			msgs = append(msgs, m)
		}
	}
	slices.SortFunc(msgs, func(a, b Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.Hex(), a.ID.Hex())
	})
	return msgs
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrConversationNotFound)
}
