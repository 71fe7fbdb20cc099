package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/async"
	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/push"
	"github.com/dmitrymomot/socialkit/pkg/realtime"
)

// TokenDirectory resolves and prunes device tokens.
type TokenDirectory interface {
	PushTokens(ctx context.Context, id bson.ObjectID) ([]string, error)
	PushTokensMatching(ctx context.Context, filter bson.M) ([]string, error)
	RemovePushTokens(ctx context.Context, tokens ...string) error
}

// Notifier delivers a Plan over its channels. Channels run concurrently and
// independently: a failing channel is logged and reported but never stops
// the others.
type Notifier struct {
	store   Store
	tokens  TokenDirectory
	sender  push.Sender
	emitter realtime.Emitter
	log     *slog.Logger
	now     func() time.Time
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithNotifierLogger sets the logger used for per-channel failures.
func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		if l != nil {
			n.log = l
		}
	}
}

// NewNotifier wires the three delivery channels. Every dependency is required.
func NewNotifier(store Store, tokens TokenDirectory, sender push.Sender, emitter realtime.Emitter, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		store:   store,
		tokens:  tokens,
		sender:  sender,
		emitter: emitter,
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	n.log = n.log.With(logger.Component("notification"))
	return n
}

type channelRun struct {
	kind ChannelKind
	fut  *async.Future[struct{}]
}

// Notify delivers plan and returns the joined channel errors, each wrapped
// with ErrDeliveryFailed and its channel name.
func (n *Notifier) Notify(ctx context.Context, plan Plan) error {
	var runs []channelRun
	start := func(kind ChannelKind, fn func(context.Context) error) {
		runs = append(runs, channelRun{kind: kind, fut: async.Go(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, fn(ctx)
		})})
	}

	if p := plan.push; p != nil {
		start(ChannelPush, func(ctx context.Context) error { return n.sendPush(ctx, plan.target, *p) })
	}
	if r := plan.realtime; r != nil {
		start(ChannelRealtime, func(ctx context.Context) error { return n.emit(ctx, plan.target, *r) })
	}
	if r := plan.record; r != nil {
		start(ChannelRecord, func(ctx context.Context) error { return n.record(ctx, plan.target, *r) })
	}

	var errs []error
	for _, run := range runs {
		if _, err := run.fut.Await(); err != nil {
			n.log.LogAttrs(ctx, slog.LevelWarn, "notification channel failed",
				logger.Channel(string(run.kind)),
				logger.UserID(plan.target.user),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, run.kind, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) sendPush(ctx context.Context, target Target, p Push) error {
	var (
		tokens []string
		err    error
	)
	if target.grouped {
		tokens, err = n.tokens.PushTokensMatching(ctx, target.group)
	} else {
		tokens, err = n.tokens.PushTokens(ctx, target.user)
	}
	if err != nil {
		return fmt.Errorf("resolve push tokens: %w", err)
	}

	res, err := n.sender.Multicast(ctx, push.Message{
		Tokens: tokens,
		Title:  p.Title,
		Body:   p.Body,
		Data:   p.Data,
	})
	if err != nil {
		return err
	}

	if res != nil && len(res.InvalidTokens) > 0 {
		if err := n.tokens.RemovePushTokens(ctx, res.InvalidTokens...); err != nil {
			n.log.WarnContext(ctx, "failed to prune invalid push tokens",
				logger.Count("tokens", len(res.InvalidTokens)),
				logger.Error(err),
			)
		}
	}
	return nil
}

func (n *Notifier) emit(ctx context.Context, target Target, r Realtime) error {
	if target.grouped {
		return n.emitter.EmitBroadcast(ctx, r.Event, r.Payload)
	}
	return n.emitter.Emit(ctx, target.user.Hex(), r.Event, r.Payload)
}

func (n *Notifier) record(ctx context.Context, target Target, r Record) error {
	owner := r.User
	if owner.IsZero() {
		owner = target.user
	}
	rec := &Notification{
		User:      owner,
		Type:      r.Type,
		Message:   r.Message,
		Messenger: r.Messenger,
		Title:     r.Title,
		Body:      r.Body,
		Status:    StatusUnread,
		CreatedAt: n.now(),
	}
	return n.store.Create(ctx, rec)
}
