package messaging

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

// ConversationQuery selects the conversations a user takes part in.
// Keyword, when set, matches the last message text or the counterpart's
// name, case-insensitively.
type ConversationQuery struct {
	User    bson.ObjectID
	Keyword string
	mongo.PageParams
}

// ConversationStore persists conversations keyed by their unordered user pair.
type ConversationStore interface {
	// FindOrCreate returns the conversation of the unordered pair, creating
	// a pending one from -> to when none exists. created reports which.
	FindOrCreate(ctx context.Context, from, to bson.ObjectID, at time.Time) (c *Conversation, created bool, err error)
	Get(ctx context.Context, id bson.ObjectID) (*Conversation, error)
	FindByPair(ctx context.Context, a, b bson.ObjectID) (*Conversation, error)
	// SetStatus moves the conversation from one status to another. It
	// reports false when the stored status was no longer from.
	SetStatus(ctx context.Context, id bson.ObjectID, from, to ConversationStatus, at time.Time) (bool, error)
	// SetLastMessage stores a reference only; nil clears it.
	SetLastMessage(ctx context.Context, id bson.ObjectID, msg *bson.ObjectID, at time.Time) error
	List(ctx context.Context, q ConversationQuery) (mongo.Page[ConversationSummary], error)
	Delete(ctx context.Context, id bson.ObjectID) (*Conversation, error)
}

// MessageStore persists messages.
type MessageStore interface {
	Create(ctx context.Context, m *Message) error
	Get(ctx context.Context, id bson.ObjectID) (*Message, error)
	// List returns a conversation's messages, newest first.
	List(ctx context.Context, conversation bson.ObjectID, params mongo.PageParams) (mongo.Page[Message], error)
	// MarkRead marks every sent message addressed to recipient as read and
	// returns how many changed.
	MarkRead(ctx context.Context, conversation, recipient bson.ObjectID) (int64, error)
	Delete(ctx context.Context, id bson.ObjectID) (*Message, error)
	// DeleteByConversation removes and returns every message of the
	// conversation.
	DeleteByConversation(ctx context.Context, conversation bson.ObjectID) ([]Message, error)
}

const maxPairAttempts = 3

// resolvePair is the find-or-create loop shared by the stores. insert must
// return errDuplicatePair when another writer created the pair first; the
// loop then reads the winner.
func resolvePair(
	ctx context.Context,
	find func(context.Context) (*Conversation, error),
	insert func(context.Context) (*Conversation, error),
) (*Conversation, bool, error) {
	for range maxPairAttempts {
		c, err := find(ctx)
		if err != nil {
			return nil, false, err
		}
		if c != nil {
			return c, false, nil
		}

		c, err = insert(ctx)
		switch {
		case err == nil:
			return c, true, nil
		case errors.Is(err, errDuplicatePair):
			continue
		default:
			return nil, false, err
		}
	}
	return nil, false, ErrPairConflict
}
