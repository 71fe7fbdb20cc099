package customer

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Customer links a user to the billing side of the platform. There is at
// most one customer per user.
type Customer struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	User      bson.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	User          bson.ObjectID
	CreatedAfter  time.Time
	CreatedBefore time.Time
}

func (f Filter) match(c Customer) bool {
	if !f.User.IsZero() && c.User != f.User {
		return false
	}
	if !f.CreatedAfter.IsZero() && !c.CreatedAt.After(f.CreatedAfter) {
		return false
	}
	if !f.CreatedBefore.IsZero() && !c.CreatedAt.Before(f.CreatedBefore) {
		return false
	}
	return true
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if !f.User.IsZero() {
		m["user"] = f.User
	}
	created := bson.M{}
	if !f.CreatedAfter.IsZero() {
		created["$gt"] = f.CreatedAfter
	}
	if !f.CreatedBefore.IsZero() {
		created["$lt"] = f.CreatedBefore
	}
	if len(created) > 0 {
		m["createdAt"] = created
	}
	return m
}
