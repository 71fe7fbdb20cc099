package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/validator"
)

// CardInput is raw card data for tokenization. Only test and server-side
// flows should use it; clients normally tokenize themselves.
type CardInput struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

func (g *Gateway) CreateCardToken(ctx context.Context, in CardInput) (*stripe.Token, error) {
	if err := validator.Check(
		validator.Required("number", in.Number).WithMessage(ErrMissingCard.Message),
		validator.Required("exp_month", in.ExpMonth).WithMessage(ErrMissingCard.Message),
		validator.Required("exp_year", in.ExpYear).WithMessage(ErrMissingCard.Message),
		validator.Required("cvc", in.CVC).WithMessage(ErrMissingCard.Message),
	); err != nil {
		return nil, err
	}
	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   stripe.String(in.Number),
			ExpMonth: stripe.String(in.ExpMonth),
			ExpYear:  stripe.String(in.ExpYear),
			CVC:      stripe.String(in.CVC),
		},
	}
	params.Context = ctx
	tok, err := g.sc.Tokens.New(params)
	if err != nil {
		return nil, stripeErr("create token", err)
	}
	return tok, nil
}

// CreateCustomer creates a provider customer for userID with source attached
// and stores it as the user's customer-source account.
func (g *Gateway) CreateCustomer(ctx context.Context, userID, email, source string) (*stripe.Customer, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	if err := validator.Check(
		validator.Required("email", email).WithMessage(ErrMissingEmail.Message),
		validator.Required("source", source).WithMessage(ErrMissingSource.Message),
	); err != nil {
		return nil, err
	}

	if _, err := g.accounts.Get(ctx, uid, TypeCustomerSource); err == nil {
		return nil, ErrCustomerExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	params := &stripe.CustomerParams{
		Email:  stripe.String(strings.TrimSpace(email)),
		Source: stripe.String(source),
	}
	params.Context = ctx
	params.AddMetadata("user_id", uid)
	cus, err := g.sc.Customers.New(params)
	if err != nil {
		return nil, stripeErr("create customer", err)
	}

	if err := g.accounts.Save(ctx, &PaymentAccount{
		UserID:    uid,
		Type:      TypeCustomerSource,
		AccountID: cus.ID,
		Account:   snapshot(cus),
	}); err != nil {
		return nil, err
	}

	g.log.InfoContext(ctx, "customer created", logger.UserID(uid), logger.CustomerID(cus.ID))
	return cus, nil
}

func (g *Gateway) customerAccount(ctx context.Context, userID string) (*PaymentAccount, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	acc, err := g.accounts.Get(ctx, uid, TypeCustomerSource)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrCustomerNotFound
	}
	return acc, err
}

func (g *Gateway) GetCustomer(ctx context.Context, userID string) (*stripe.Customer, error) {
	acc, err := g.customerAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cus, err := g.sc.Customers.Get(acc.AccountID, params)
	if err != nil {
		return nil, stripeErr("get customer", err)
	}
	return cus, nil
}

// DeleteCustomer deletes the provider customer and then the stored mapping.
func (g *Gateway) DeleteCustomer(ctx context.Context, userID string) (*stripe.Customer, error) {
	acc, err := g.customerAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.CustomerParams{}
	params.Context = ctx
	cus, err := g.sc.Customers.Del(acc.AccountID, params)
	if err != nil {
		return nil, stripeErr("delete customer", err)
	}
	if _, err := g.accounts.Delete(ctx, acc.UserID, TypeCustomerSource); err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	g.log.InfoContext(ctx, "customer deleted", logger.UserID(acc.UserID), logger.CustomerID(acc.AccountID))
	return cus, nil
}

// AddCustomerSource attaches another tokenized source to the user's customer.
func (g *Gateway) AddCustomerSource(ctx context.Context, userID, source string) (*stripe.PaymentSource, error) {
	if err := validator.Check(
		validator.Required("source", source).WithMessage(ErrMissingSource.Message),
	); err != nil {
		return nil, err
	}
	acc, err := g.customerAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentSourceParams{
		Customer: stripe.String(acc.AccountID),
		Source:   &stripe.PaymentSourceSourceParams{Token: stripe.String(source)},
	}
	params.Context = ctx
	src, err := g.sc.PaymentSources.New(params)
	if err != nil {
		return nil, stripeErr("add customer source", err)
	}
	return src, nil
}
