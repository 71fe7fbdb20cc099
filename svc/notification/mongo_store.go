package notification

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

const Collection = "notifications"

// MongoStore keeps notifications in the "notifications" collection.
type MongoStore struct {
	coll *mongodrv.Collection
}

// NewMongoStore binds the store to db. Call Indexes once at startup.
func NewMongoStore(db *mongodrv.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func (s *MongoStore) Indexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, s.coll,
		mongodrv.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		mongodrv.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}}},
	)
}

func (s *MongoStore) Create(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id bson.ObjectID) (*Notification, error) {
	var n Notification
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

func (s *MongoStore) List(ctx context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Notification], error) {
	return mongo.Paginate[Notification](ctx, s.coll,
		mongodrv.Pipeline{{{Key: "$match", Value: filter.bson()}}},
		params, "createdAt",
	)
}

func (s *MongoStore) Delete(ctx context.Context, id bson.ObjectID) (*Notification, error) {
	var n Notification
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("delete notification: %w", err)
	}
	return &n, nil
}

func (s *MongoStore) MarkAllRead(ctx context.Context, user bson.ObjectID) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"user": user, "status": StatusUnread},
		bson.M{"$set": bson.M{"status": StatusRead}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *MongoStore) CountUnread(ctx context.Context, user bson.ObjectID) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user": user, "status": StatusUnread})
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}
