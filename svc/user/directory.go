package user

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Directory is the user lookup used by the customer, notification and
// messaging services.
type Directory interface {
	Exists(ctx context.Context, id bson.ObjectID) (bool, error)
	Get(ctx context.Context, id bson.ObjectID) (*User, error)
	// PushTokens returns the tokens registered by one user.
	PushTokens(ctx context.Context, id bson.ObjectID) ([]string, error)
	// PushTokensMatching returns the distinct tokens of every user matching filter.
	PushTokensMatching(ctx context.Context, filter bson.M) ([]string, error)
	AddPushToken(ctx context.Context, id bson.ObjectID, token string) error
	// RemovePushTokens unregisters tokens from whichever users hold them.
	RemovePushTokens(ctx context.Context, tokens ...string) error
}
