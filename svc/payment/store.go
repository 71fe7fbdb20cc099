package payment

import "context"

// AccountStore persists PaymentAccount records keyed by (user, type).
// AccountID is unique across all records.
type AccountStore interface {
	// Save inserts or replaces the record for (UserID, Type). CreatedAt is
	// preserved on replace.
	Save(ctx context.Context, acc *PaymentAccount) error
	Get(ctx context.Context, userID string, typ AccountType) (*PaymentAccount, error)
	GetByAccountID(ctx context.Context, accountID string) (*PaymentAccount, error)
	// Delete removes the record and returns the deleted snapshot.
	Delete(ctx context.Context, userID string, typ AccountType) (*PaymentAccount, error)
}
