package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/validator"
)

func (g *Gateway) platformAccount(ctx context.Context, userID string) (*PaymentAccount, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	return g.accounts.Get(ctx, uid, TypePlatformAccount)
}

// CreateConnectedAccount opens an Express account for userID with card
// payments and transfers requested, and stores it as the user's
// platform-account.
func (g *Gateway) CreateConnectedAccount(ctx context.Context, userID, email, country string) (*stripe.Account, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	if err := validator.Check(
		validator.Required("email", email).WithMessage(ErrMissingEmail.Message),
		validator.Required("country", country).WithMessage(ErrMissingCountry.Message),
	); err != nil {
		return nil, err
	}

	if _, err := g.accounts.Get(ctx, uid, TypePlatformAccount); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	params := &stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Email:   stripe.String(strings.TrimSpace(email)),
		Country: stripe.String(strings.ToUpper(strings.TrimSpace(country))),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", uid)
	acct, err := g.sc.Accounts.New(params)
	if err != nil {
		return nil, stripeErr("create account", err)
	}

	if err := g.accounts.Save(ctx, &PaymentAccount{
		UserID:    uid,
		Type:      TypePlatformAccount,
		AccountID: acct.ID,
		Account:   snapshot(acct),
	}); err != nil {
		return nil, err
	}

	g.log.InfoContext(ctx, "connected account created", logger.UserID(uid), slog.String("account_id", acct.ID))
	return acct, nil
}

func (g *Gateway) GetConnectedAccount(ctx context.Context, userID string) (*stripe.Account, error) {
	acc, err := g.platformAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := g.sc.Accounts.GetByID(acc.AccountID, params)
	if err != nil {
		return nil, stripeErr("get account", err)
	}
	return acct, nil
}

// CreateAccountLink returns a one-time onboarding link for the user's
// connected account.
func (g *Gateway) CreateAccountLink(ctx context.Context, userID, refreshURL, returnURL string) (*stripe.AccountLink, error) {
	if err := validator.Check(
		validator.Required("refresh_url", refreshURL).WithMessage(ErrMissingLinkURLs.Message),
		validator.Required("return_url", returnURL).WithMessage(ErrMissingLinkURLs.Message),
	); err != nil {
		return nil, err
	}
	acc, err := g.platformAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(acc.AccountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx
	link, err := g.sc.AccountLinks.New(params)
	if err != nil {
		return nil, stripeErr("create account link", err)
	}
	return link, nil
}

func (g *Gateway) DeleteConnectedAccount(ctx context.Context, userID string) (*stripe.Account, error) {
	acc, err := g.platformAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := g.sc.Accounts.Del(acc.AccountID, params)
	if err != nil {
		return nil, stripeErr("delete account", err)
	}
	if _, err := g.accounts.Delete(ctx, acc.UserID, TypePlatformAccount); err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	g.log.InfoContext(ctx, "connected account deleted", logger.UserID(acc.UserID), slog.String("account_id", acc.AccountID))
	return acct, nil
}
