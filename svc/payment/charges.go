package payment

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/dmitrymomot/socialkit/pkg/validator"
)

// ChargeInput describes a one-off charge. Either CustomerUserID (charge the
// user's stored customer) or Source must be set. AuthorizeOnly leaves the
// charge uncaptured.
type ChargeInput struct {
	CustomerUserID string
	Source         string
	Amount         int64
	Currency       string
	Description    string
	AuthorizeOnly  bool
}

func (g *Gateway) CreateCharge(ctx context.Context, in ChargeInput) (*stripe.Charge, error) {
	if err := checkAmount(in.Amount, in.Currency); err != nil {
		return nil, err
	}
	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(in.Amount),
		Currency:    lower(in.Currency),
		Description: optional(in.Description),
		Capture:     stripe.Bool(!in.AuthorizeOnly),
	}
	params.Context = ctx

	switch {
	case in.CustomerUserID != "":
		acc, err := g.customerAccount(ctx, in.CustomerUserID)
		if err != nil {
			return nil, err
		}
		params.Customer = stripe.String(acc.AccountID)
		if src := strings.TrimSpace(in.Source); src != "" {
			params.Source = &stripe.PaymentSourceSourceParams{Token: stripe.String(src)}
		}
	case strings.TrimSpace(in.Source) != "":
		params.Source = &stripe.PaymentSourceSourceParams{Token: stripe.String(strings.TrimSpace(in.Source))}
	default:
		return nil, ErrMissingSource
	}

	ch, err := g.sc.Charges.New(params)
	if err != nil {
		return nil, stripeErr("create charge", err)
	}
	return ch, nil
}

func (g *Gateway) GetCharge(ctx context.Context, chargeID string) (*stripe.Charge, error) {
	if err := validator.Check(validator.Required("charge", chargeID).WithMessage(ErrMissingChargeID.Message)); err != nil {
		return nil, err
	}
	params := &stripe.ChargeParams{}
	params.Context = ctx
	ch, err := g.sc.Charges.Get(chargeID, params)
	if err != nil {
		return nil, stripeErr("get charge", err)
	}
	return ch, nil
}

// CaptureCharge captures an authorized charge. A zero amount captures the
// full authorized amount.
func (g *Gateway) CaptureCharge(ctx context.Context, chargeID string, amount int64) (*stripe.Charge, error) {
	if err := validator.Check(
		validator.Required("charge", chargeID).WithMessage(ErrMissingChargeID.Message),
		validator.True("amount", amount >= 0, ErrInvalidAmount.Message),
	); err != nil {
		return nil, err
	}
	params := &stripe.ChargeCaptureParams{}
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	params.Context = ctx
	ch, err := g.sc.Charges.Capture(chargeID, params)
	if err != nil {
		return nil, stripeErr("capture charge", err)
	}
	return ch, nil
}

// RefundInput targets exactly one of Charge or PaymentIntent. A zero Amount
// refunds in full.
type RefundInput struct {
	Charge        string
	PaymentIntent string
	Amount        int64
	Reason        string
}

func (g *Gateway) Refund(ctx context.Context, in RefundInput) (*stripe.Refund, error) {
	hasCharge, hasIntent := in.Charge != "", in.PaymentIntent != ""
	if err := validator.Check(
		validator.True("target", hasCharge != hasIntent, ErrRefundTarget.Message),
		validator.True("amount", in.Amount >= 0, ErrInvalidAmount.Message),
	); err != nil {
		return nil, err
	}
	params := &stripe.RefundParams{
		Charge:        optional(in.Charge),
		PaymentIntent: optional(in.PaymentIntent),
		Reason:        optional(in.Reason),
	}
	if in.Amount > 0 {
		params.Amount = stripe.Int64(in.Amount)
	}
	params.Context = ctx
	r, err := g.sc.Refunds.New(params)
	if err != nil {
		return nil, stripeErr("create refund", err)
	}
	return r, nil
}

// TransferInput moves funds from the platform balance to the connected
// account of RecipientUserID.
type TransferInput struct {
	RecipientUserID   string
	Amount            int64
	Currency          string
	SourceTransaction string
	Description       string
}

func (g *Gateway) CreateTransfer(ctx context.Context, in TransferInput) (*stripe.Transfer, error) {
	if err := checkAmount(in.Amount, in.Currency); err != nil {
		return nil, err
	}
	acc, err := g.platformAccount(ctx, in.RecipientUserID)
	if err != nil {
		return nil, err
	}
	params := &stripe.TransferParams{
		Amount:            stripe.Int64(in.Amount),
		Currency:          lower(in.Currency),
		Destination:       stripe.String(acc.AccountID),
		SourceTransaction: optional(in.SourceTransaction),
		Description:       optional(in.Description),
	}
	params.Context = ctx
	tr, err := g.sc.Transfers.New(params)
	if err != nil {
		return nil, stripeErr("create transfer", err)
	}
	return tr, nil
}
