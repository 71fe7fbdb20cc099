package payment

import (
	"errors"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
)

var (
	ErrMissingUserID        = apperror.BadRequest("Please enter user id!")
	ErrInvalidUserID        = apperror.BadRequest("Invalid user id!")
	ErrMissingEmail         = apperror.BadRequest("Please enter email!")
	ErrMissingSource        = apperror.BadRequest("Please enter payment source!")
	ErrMissingCard          = apperror.BadRequest("Please enter card number, expiry and cvc!")
	ErrInvalidAmount        = apperror.BadRequest("Please enter a valid amount!")
	ErrInvalidCurrency      = apperror.BadRequest("Please enter a valid currency!")
	ErrMissingChargeID      = apperror.BadRequest("Please enter charge id!")
	ErrMissingIntentID      = apperror.BadRequest("Please enter payment intent id!")
	ErrRefundTarget         = apperror.BadRequest("Please enter either a charge or a payment intent!")
	ErrMissingCountry       = apperror.BadRequest("Please enter country!")
	ErrMissingLinkURLs      = apperror.BadRequest("Please enter refresh and return urls!")
	ErrInvalidSignature     = apperror.BadRequest("Invalid webhook signature!")
	ErrCustomerNotFound     = apperror.NotFound("Customer not found!")
	ErrAccountNotFound      = apperror.NotFound("Payment account not found!")
	ErrCustomerExists       = apperror.Conflict("Customer already exists!")
	ErrAccountExists        = apperror.Conflict("Payment account already exists!")
	ErrAccountIDConflict    = apperror.Conflict("Payment account is linked to another user!")
	ErrInvalidAccountType   = errors.New("payment: invalid account type")
	ErrMissingStripeClient  = errors.New("payment: stripe client is required")
	ErrMissingAccountStore  = errors.New("payment: account store is required")
	ErrMissingWebhookSecret = errors.New("payment: webhook secret is required")
)
