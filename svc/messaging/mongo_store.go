package messaging

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/svc/user"
)

const (
	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
)

// MongoConversationStore keeps conversations in the "conversations" collection.
type MongoConversationStore struct {
	coll *mongodrv.Collection
}

// NewMongoConversationStore binds the store to db. Call Indexes once at startup.
func NewMongoConversationStore(db *mongodrv.Database) *MongoConversationStore {
	return &MongoConversationStore{coll: db.Collection(ConversationsCollection)}
}

func (s *MongoConversationStore) Indexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, s.coll,
		mongodrv.IndexModel{
			Keys:    bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongodrv.IndexModel{Keys: bson.D{{Key: "userFrom", Value: 1}, {Key: "updatedAt", Value: -1}}},
		mongodrv.IndexModel{Keys: bson.D{{Key: "userTo", Value: 1}, {Key: "updatedAt", Value: -1}}},
	)
}

func (s *MongoConversationStore) FindOrCreate(ctx context.Context, from, to bson.ObjectID, at time.Time) (*Conversation, bool, error) {
	key := PairKey(from, to)
	return resolvePair(ctx,
		func(ctx context.Context) (*Conversation, error) {
			c, err := s.findOne(ctx, bson.M{"pairKey": key})
			if errors.Is(err, ErrConversationNotFound) {
				return nil, nil
			}
			return c, err
		},
		func(ctx context.Context) (*Conversation, error) {
			c := &Conversation{
				ID:        bson.NewObjectID(),
				UserFrom:  from,
				UserTo:    to,
				PairKey:   key,
				Status:    StatusPending,
				CreatedAt: at,
				UpdatedAt: at,
			}
			if _, err := s.coll.InsertOne(ctx, c); err != nil {
				if mongo.IsDuplicateKey(err) {
					return nil, errDuplicatePair
				}
				return nil, fmt.Errorf("insert conversation: %w", err)
			}
			return c, nil
		},
	)
}

func (s *MongoConversationStore) Get(ctx context.Context, id bson.ObjectID) (*Conversation, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoConversationStore) FindByPair(ctx context.Context, a, b bson.ObjectID) (*Conversation, error) {
	return s.findOne(ctx, bson.M{"pairKey": PairKey(a, b)})
}

func (s *MongoConversationStore) findOne(ctx context.Context, filter bson.M) (*Conversation, error) {
	var c Conversation
	if err := s.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	return &c, nil
}

func (s *MongoConversationStore) SetStatus(ctx context.Context, id bson.ObjectID, from, to ConversationStatus, at time.Time) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": at}},
	)
	if err != nil {
		return false, fmt.Errorf("update conversation status: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *MongoConversationStore) SetLastMessage(ctx context.Context, id bson.ObjectID, msg *bson.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"lastMessage": msg, "updatedAt": at}}
	if msg == nil {
		update = bson.M{"$set": bson.M{"updatedAt": at}, "$unset": bson.M{"lastMessage": ""}}
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update last message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// List joins each conversation with its last message and the counterpart's
// profile before the keyword match, so both can be searched.
func (s *MongoConversationStore) List(ctx context.Context, q ConversationQuery) (mongo.Page[ConversationSummary], error) {
	pipeline := mongodrv.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{bson.M{"userFrom": q.User}, bson.M{"userTo": q.User}}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         MessagesCollection,
			"localField":   "lastMessage",
			"foreignField": "_id",
			"as":           "lastMessageObj",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$lastMessageObj", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{"counterpartId": bson.M{
			"$cond": bson.A{bson.M{"$eq": bson.A{"$userFrom", q.User}}, "$userTo", "$userFrom"},
		}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         user.Collection,
			"localField":   "counterpartId",
			"foreignField": "_id",
			"as":           "counterpart",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$counterpart", "preserveNullAndEmptyArrays": true}}},
	}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(kw), Options: "i"}
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"lastMessageObj.text": pattern},
			bson.M{"counterpart.name": pattern},
		}}}})
	}

	return mongo.Paginate[ConversationSummary](ctx, s.coll, pipeline, q.PageParams, "updatedAt")
}

func (s *MongoConversationStore) Delete(ctx context.Context, id bson.ObjectID) (*Conversation, error) {
	var c Conversation
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("delete conversation: %w", err)
	}
	return &c, nil
}

// MongoMessageStore keeps messages in the "messages" collection.
type MongoMessageStore struct {
	coll *mongodrv.Collection
}

// NewMongoMessageStore binds the store to db. Call Indexes once at startup.
func NewMongoMessageStore(db *mongodrv.Database) *MongoMessageStore {
	return &MongoMessageStore{coll: db.Collection(MessagesCollection)}
}

func (s *MongoMessageStore) Indexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, s.coll,
		mongodrv.IndexModel{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "createdAt", Value: -1}}},
		mongodrv.IndexModel{Keys: bson.D{{Key: "conversation", Value: 1}, {Key: "userTo", Value: 1}, {Key: "status", Value: 1}}},
	)
}

func (s *MongoMessageStore) Create(ctx context.Context, m *Message) error {
	if m.ID.IsZero() {
		m.ID = bson.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *MongoMessageStore) Get(ctx context.Context, id bson.ObjectID) (*Message, error) {
	var m Message
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

func (s *MongoMessageStore) List(ctx context.Context, conversation bson.ObjectID, params mongo.PageParams) (mongo.Page[Message], error) {
	return mongo.Paginate[Message](ctx, s.coll,
		mongodrv.Pipeline{{{Key: "$match", Value: bson.M{"conversation": conversation}}}},
		params, "createdAt",
	)
}

func (s *MongoMessageStore) MarkRead(ctx context.Context, conversation, recipient bson.ObjectID) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"conversation": conversation, "userTo": recipient, "status": MessageSent},
		bson.M{"$set": bson.M{"status": MessageRead}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoMessageStore) Delete(ctx context.Context, id bson.ObjectID) (*Message, error) {
	var m Message
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return &m, nil
}

func (s *MongoMessageStore) DeleteByConversation(ctx context.Context, conversation bson.ObjectID) ([]Message, error) {
	cur, err := s.coll.Find(ctx, bson.M{"conversation": conversation})
	if err != nil {
		return nil, fmt.Errorf("find conversation messages: %w", err)
	}
	var msgs []Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode conversation messages: %w", err)
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	// Only the messages read above are removed, so every deleted message is
	// returned to the caller for file cleanup.
	if _, err := s.coll.DeleteMany(ctx, messagesByID(msgs)); err != nil {
		return nil, fmt.Errorf("delete conversation messages: %w", err)
	}
	return msgs, nil
}

func messagesByID(msgs []Message) bson.M {
	ids := make([]bson.ObjectID, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return bson.M{"_id": bson.M{"$in": ids}}
}
