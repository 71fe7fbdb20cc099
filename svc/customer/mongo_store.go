package customer

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

const Collection = "customers"

// MongoStore keeps customers in the "customers" collection.
type MongoStore struct {
	coll *mongodrv.Collection
}

// NewMongoStore binds the store to db. Call Indexes once at startup.
func NewMongoStore(db *mongodrv.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// Indexes enforces one customer per user.
func (s *MongoStore) Indexes(ctx context.Context) error {
	return mongo.EnsureIndexes(ctx, s.coll,
		mongodrv.IndexModel{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		mongodrv.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	)
}

func (s *MongoStore) Create(ctx context.Context, c *Customer) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKey(err) {
			return ErrCustomerExists.Wrap(err)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id bson.ObjectID) (*Customer, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetByUser(ctx context.Context, userID bson.ObjectID) (*Customer, error) {
	return s.findOne(ctx, bson.M{"user": userID})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Customer, error) {
	var c Customer
	if err := s.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &c, nil
}

func (s *MongoStore) List(ctx context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Customer], error) {
	return mongo.Paginate[Customer](ctx, s.coll,
		mongodrv.Pipeline{{{Key: "$match", Value: filter.bson()}}},
		params, "createdAt",
	)
}

func (s *MongoStore) Delete(ctx context.Context, id bson.ObjectID) (*Customer, error) {
	var c Customer
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("delete customer: %w", err)
	}
	return &c, nil
}
