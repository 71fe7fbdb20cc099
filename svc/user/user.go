package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the subset of a user profile the messaging backend reads.
// Profiles are owned by the account system; this package only looks them up
// and maintains registered push tokens.
type User struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string        `bson:"name" json:"name"`
	Email      string        `bson:"email,omitempty" json:"email,omitempty"`
	Avatar     string        `bson:"avatar,omitempty" json:"avatar,omitempty"`
	PushTokens []string      `bson:"pushTokens,omitempty" json:"-"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}
