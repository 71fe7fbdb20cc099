package customer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
)

// UserChecker reports whether a user exists.
type UserChecker interface {
	Exists(ctx context.Context, id bson.ObjectID) (bool, error)
}

// Service manages customer records, at most one per user.
type Service struct {
	store Store
	users UserChecker
	log   *slog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService builds a Service over store.
func NewService(store Store, users UserChecker, opts ...Option) *Service {
	s := &Service{
		store: store,
		users: users,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("customer"))
	return s
}

// Add creates the customer record for userID. The user must exist and must
// not already have a customer.
func (s *Service) Add(ctx context.Context, userID string) (*Customer, error) {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	ok, err := s.users.Exists(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	c := &Customer{User: uid, CreatedAt: s.now()}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "customer created", logger.CustomerID(c.ID), logger.UserID(uid))
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	cid, err := mongo.ParseID(id, ErrMissingCustomerID, ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, cid)
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*Customer, error) {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	return s.store.GetByUser(ctx, uid)
}

func (s *Service) List(ctx context.Context, filter Filter, params mongo.PageParams) (mongo.Page[Customer], error) {
	return s.store.List(ctx, filter, params)
}

// Delete removes the customer and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (*Customer, error) {
	cid, err := mongo.ParseID(id, ErrMissingCustomerID, ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Delete(ctx, cid)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "customer deleted", logger.CustomerID(c.ID), logger.UserID(c.User))
	return c, nil
}
