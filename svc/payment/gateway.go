package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/pkg/validator"
)

// EventHook receives payment events after the gateway has processed them.
type EventHook func(ctx context.Context, event stripe.Event) error

// Gateway wraps the Stripe API for customers, charges, transfers, payment
// intents and connected accounts, and keeps the user to provider mapping in
// an AccountStore.
type Gateway struct {
	sc       *client.API
	accounts AccountStore
	cfg      Config
	log      *slog.Logger
	onEvent  EventHook
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the gateway logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// WithEventHook registers fn for payment_intent.succeeded,
// payment_intent.payment_failed and charge.refunded events.
func WithEventHook(fn EventHook) Option {
	return func(g *Gateway) {
		g.onEvent = fn
	}
}

// NewStripeClient builds the API client once for the whole process.
func NewStripeClient(cfg Config) *client.API {
	return client.New(cfg.SecretKey, nil)
}

// NewGateway validates its dependencies and returns a ready Gateway.
func NewGateway(sc *client.API, accounts AccountStore, cfg Config, opts ...Option) (*Gateway, error) {
	if sc == nil {
		return nil, ErrMissingStripeClient
	}
	if accounts == nil {
		return nil, ErrMissingAccountStore
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	g := &Gateway{
		sc:       sc,
		accounts: accounts,
		cfg:      cfg,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("payment"))
	return g, nil
}

func parseUser(userID string) (string, error) {
	id, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func checkAmount(amount int64, currency string) error {
	return validator.Check(
		validator.Positive("amount", amount).WithMessage(ErrInvalidAmount.Message),
		validator.Currency("currency", currency).WithMessage(ErrInvalidCurrency.Message),
	)
}

func stripeErr(op string, err error) error {
	return fmt.Errorf("stripe: %s: %w", op, err)
}

func snapshot(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

func lower(s string) *string {
	return stripe.String(strings.ToLower(strings.TrimSpace(s)))
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return stripe.String(s)
}
