package user

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/socialkit/pkg/mongo"
)

const Collection = "users"

// MongoDirectory implements Directory over the users collection.
type MongoDirectory struct {
	coll *mongo.Collection
}

// NewMongoDirectory reads profiles from the "users" collection.
func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{coll: db.Collection(Collection)}
}

// Indexes creates the push token index used by RemovePushTokens.
func (d *MongoDirectory) Indexes(ctx context.Context) error {
	return mongox.EnsureIndexes(ctx, d.coll, mongo.IndexModel{
		Keys: bson.D{{Key: "pushTokens", Value: 1}},
	})
}

// Create inserts u, assigning an id and creation time when missing.
func (d *MongoDirectory) Create(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	if _, err := d.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (d *MongoDirectory) Exists(ctx context.Context, id bson.ObjectID) (bool, error) {
	n, err := d.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return n > 0, nil
}

func (d *MongoDirectory) Get(ctx context.Context, id bson.ObjectID) (*User, error) {
	var u User
	if err := d.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (d *MongoDirectory) PushTokens(ctx context.Context, id bson.ObjectID) ([]string, error) {
	var u User
	err := d.coll.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"pushTokens": 1}),
	).Decode(&u)
	if err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find push tokens: %w", err)
	}
	return u.PushTokens, nil
}

func (d *MongoDirectory) PushTokensMatching(ctx context.Context, filter bson.M) ([]string, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cur, err := d.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"pushTokens": 1}))
	if err != nil {
		return nil, fmt.Errorf("find push tokens: %w", err)
	}
	defer cur.Close(ctx)

	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode push tokens: %w", err)
	}
	return collectTokens(users), nil
}

func (d *MongoDirectory) AddPushToken(ctx context.Context, id bson.ObjectID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	res, err := d.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"pushTokens": token}})
	if err != nil {
		return fmt.Errorf("add push token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (d *MongoDirectory) RemovePushTokens(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := d.coll.UpdateMany(ctx,
		bson.M{"pushTokens": bson.M{"$in": tokens}},
		bson.M{"$pull": bson.M{"pushTokens": bson.M{"$in": tokens}}},
	)
	if err != nil {
		return fmt.Errorf("remove push tokens: %w", err)
	}
	return nil
}

// collectTokens flattens and dedupes tokens, keeping first-seen order.
func collectTokens(users []User) []string {
	seen := make(map[string]struct{})
	tokens := make([]string, 0, len(users))
	for _, u := range users {
		for _, t := range u.PushTokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tokens = append(tokens, t)
		}
	}
	return tokens
}
