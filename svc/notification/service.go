package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/pkg/validator"
)

// UserChecker reports whether a user exists.
type UserChecker interface {
	Exists(ctx context.Context, id bson.ObjectID) (bool, error)
}

// Service manages stored notifications and their read state.
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

// NewService builds a Service over store. users is consulted before
// bulk read-state changes.
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
	s.log = s.log.With(logger.Component("notification"))
	return s
}

// AddInput describes a notification created directly, outside a fan-out.
// Message and Messenger are optional hex ids.
type AddInput struct {
	User      string
	Type      string
	Message   string
	Messenger string
	Title     string
	Body      string
}

func (s *Service) Add(ctx context.Context, in AddInput) (*Notification, error) {
	uid, err := mongo.ParseID(in.User, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}
	if err := validator.Check(
		validator.Required("type", in.Type).WithMessage(ErrMissingType.Message),
		validator.MaxLen("title", in.Title, 200),
		validator.MaxLen("body", in.Body, 2000),
	); err != nil {
		return nil, err
	}

	n := &Notification{
		User:      uid,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Status:    StatusUnread,
		CreatedAt: s.now(),
	}
	if n.Message, err = optionalID(in.Message); err != nil {
		return nil, err
	}
	if n.Messenger, err = optionalID(in.Messenger); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, uid); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Notification, error) {
	nid, err := mongo.ParseID(id, ErrMissingNotificationID, ErrInvalidNotificationID)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, nid)
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, params mongo.PageParams) (mongo.Page[Notification], error) {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return mongo.Page[Notification]{}, err
	}
	return s.store.List(ctx, Filter{User: uid}, params)
}

// Delete removes a notification and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (*Notification, error) {
	nid, err := mongo.ParseID(id, ErrMissingNotificationID, ErrInvalidNotificationID)
	if err != nil {
		return nil, err
	}
	return s.store.Delete(ctx, nid)
}

// ReadAll marks every notification of the user as read. Repeating it is a
// no-op.
func (s *Service) ReadAll(ctx context.Context, userID string) error {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return err
	}
	if err := s.requireUser(ctx, uid); err != nil {
		return err
	}

	changed, err := s.store.MarkAllRead(ctx, uid)
	if err != nil {
		return err
	}
	s.log.DebugContext(ctx, "notifications read", logger.UserID(uid), slog.Int64("changed", changed))
	return nil
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int64, error) {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return 0, err
	}
	return s.store.CountUnread(ctx, uid)
}

func (s *Service) requireUser(ctx context.Context, id bson.ObjectID) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

func optionalID(hex string) (*bson.ObjectID, error) {
	if hex == "" {
		return nil, nil
	}
	id, err := mongo.ParseID(hex, ErrInvalidReference, ErrInvalidReference)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
