package customer

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

// Store persists customers. Get, GetByUser and Delete return
// ErrCustomerNotFound when nothing matches; Create returns ErrCustomerExists
// when the user already has a customer.
type Store interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id bson.ObjectID) (*Customer, error)
	GetByUser(ctx context.Context, userID bson.ObjectID) (*Customer, error)
	List(ctx context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Customer], error)
	// Delete removes the customer and returns its last state.
	Delete(ctx context.Context, id bson.ObjectID) (*Customer, error)
}
