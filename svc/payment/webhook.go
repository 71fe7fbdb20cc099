package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
	"github.com/dmitrymomot/socialkit/pkg/logger"
)

const (
	EventAccountUpdated         = "account.updated"
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded         = "charge.refunded"
)

// VerifyWebhook checks the Stripe-Signature header against the configured
// secret and decodes the event.
func (g *Gateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.cfg.WebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                g.cfg.WebhookTolerance,
		IgnoreAPIVersionMismatch: g.cfg.IgnoreAPIVersionMismatch,
	})
	if err != nil {
		return stripe.Event{}, ErrInvalidSignature.Wrap(err)
	}
	return event, nil
}

// HandleWebhook applies a verified event. Unknown event types are ignored.
func (g *Gateway) HandleWebhook(ctx context.Context, event stripe.Event) error {
	log := g.log.With(logger.StripeEventID(event.ID), logger.Event(string(event.Type)))

	switch string(event.Type) {
	case EventAccountUpdated:
		return g.refreshAccount(ctx, log, event)
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed, EventChargeRefunded:
		log.InfoContext(ctx, "payment event received")
		if g.onEvent == nil {
			return nil
		}
		if err := g.onEvent(ctx, event); err != nil {
			return fmt.Errorf("handle %s: %w", event.Type, err)
		}
		return nil
	default:
		log.DebugContext(ctx, "webhook event ignored")
		return nil
	}
}

func (g *Gateway) refreshAccount(ctx context.Context, log *slog.Logger, event stripe.Event) error {
	if event.Data == nil {
		return nil
	}
	var acct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		return fmt.Errorf("decode account: %w", err)
	}

	stored, err := g.accounts.GetByAccountID(ctx, acct.ID)
	if errors.Is(err, ErrAccountNotFound) {
		log.DebugContext(ctx, "account update for unknown account", slog.String("account_id", acct.ID))
		return nil
	}
	if err != nil {
		return err
	}

	stored.Account = event.Data.Raw
	if err := g.accounts.Save(ctx, stored); err != nil {
		return err
	}
	log.InfoContext(ctx, "connected account refreshed",
		logger.UserID(stored.UserID),
		slog.String("account_id", acct.ID),
		slog.Bool("charges_enabled", acct.ChargesEnabled),
		slog.Bool("payouts_enabled", acct.PayoutsEnabled),
	)
	return nil
}

// WebhookHandler verifies and applies Stripe webhooks. It answers 400 for
// bad signatures and 500 when applying the event fails so Stripe retries.
func (g *Gateway) WebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit := g.cfg.MaxWebhookBodyBytes
		if limit <= 0 {
			limit = 65536
		}
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		event, err := g.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			g.log.WarnContext(ctx, "webhook rejected", logger.Error(err))
			http.Error(w, apperror.MessageOf(err), apperror.CodeOf(err))
			return
		}

		if err := g.HandleWebhook(ctx, event); err != nil {
			g.log.ErrorContext(ctx, "webhook failed", logger.StripeEventID(event.ID), logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
