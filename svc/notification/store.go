package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

// Store persists notifications. Get and Delete return
// ErrNotificationNotFound when nothing matches.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id bson.ObjectID) (*Notification, error)
	List(ctx context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Notification], error)
	Delete(ctx context.Context, id bson.ObjectID) (*Notification, error)
	// MarkAllRead sets every unread notification of user to read and returns
	// how many changed.
	MarkAllRead(ctx context.Context, user bson.ObjectID) (int64, error)
	CountUnread(ctx context.Context, user bson.ObjectID) (int64, error)
}
