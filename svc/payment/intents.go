package payment

import (
	"context"

	"github.com/stripe/stripe-go/v79"

	"github.com/dmitrymomot/socialkit/pkg/validator"
)

// PaymentIntentInput creates an intent for the stored customer of
// CustomerUserID. With RecipientUserID set the funds are routed to that
// user's connected account, minus ApplicationFee.
type PaymentIntentInput struct {
	CustomerUserID  string
	RecipientUserID string
	Amount          int64
	Currency        string
	PaymentMethod   string
	Description     string
	ApplicationFee  int64
	ManualCapture   bool
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (*stripe.PaymentIntent, error) {
	if err := checkAmount(in.Amount, in.Currency); err != nil {
		return nil, err
	}
	if err := validator.Check(
		validator.True("application_fee", in.ApplicationFee >= 0 && in.ApplicationFee < in.Amount, ErrInvalidAmount.Message),
	); err != nil {
		return nil, err
	}
	cus, err := g.customerAccount(ctx, in.CustomerUserID)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      lower(in.Currency),
		Customer:      stripe.String(cus.AccountID),
		PaymentMethod: optional(in.PaymentMethod),
		Description:   optional(in.Description),
	}
	if in.ManualCapture {
		params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}
	if in.RecipientUserID != "" {
		dest, err := g.platformAccount(ctx, in.RecipientUserID)
		if err != nil {
			return nil, err
		}
		params.TransferData = &stripe.PaymentIntentTransferDataParams{Destination: stripe.String(dest.AccountID)}
		if in.ApplicationFee > 0 {
			params.ApplicationFeeAmount = stripe.Int64(in.ApplicationFee)
		}
	}
	params.Context = ctx
	params.AddMetadata("user_id", cus.UserID)

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, stripeErr("create payment intent", err)
	}
	return pi, nil
}

func checkIntentID(id string) error {
	return validator.Check(validator.Required("payment_intent", id).WithMessage(ErrMissingIntentID.Message))
}

func (g *Gateway) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	if err := checkIntentID(id); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, stripeErr("get payment intent", err)
	}
	return pi, nil
}

// ConfirmPaymentIntent confirms the intent, optionally switching to
// paymentMethod first.
func (g *Gateway) ConfirmPaymentIntent(ctx context.Context, id, paymentMethod string) (*stripe.PaymentIntent, error) {
	if err := checkIntentID(id); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentConfirmParams{PaymentMethod: optional(paymentMethod)}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Confirm(id, params)
	if err != nil {
		return nil, stripeErr("confirm payment intent", err)
	}
	return pi, nil
}

// CapturePaymentIntent captures a manually captured intent. A zero amount
// captures everything that was authorized.
func (g *Gateway) CapturePaymentIntent(ctx context.Context, id string, amount int64) (*stripe.PaymentIntent, error) {
	if err := checkIntentID(id); err != nil {
		return nil, err
	}
	if err := validator.Check(validator.True("amount", amount >= 0, ErrInvalidAmount.Message)); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentCaptureParams{}
	if amount > 0 {
		params.AmountToCapture = stripe.Int64(amount)
	}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Capture(id, params)
	if err != nil {
		return nil, stripeErr("capture payment intent", err)
	}
	return pi, nil
}

func (g *Gateway) CancelPaymentIntent(ctx context.Context, id, reason string) (*stripe.PaymentIntent, error) {
	if err := checkIntentID(id); err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentCancelParams{CancellationReason: optional(reason)}
	params.Context = ctx
	pi, err := g.sc.PaymentIntents.Cancel(id, params)
	if err != nil {
		return nil, stripeErr("cancel payment intent", err)
	}
	return pi, nil
}
