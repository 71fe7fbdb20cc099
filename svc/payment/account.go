package payment

import (
	"encoding/json"
	"time"
)

// AccountType tells connected accounts apart from customer records.
type AccountType string

const (
	// TypePlatformAccount is a connected account that receives transfers.
	TypePlatformAccount AccountType = "platform-account"
	// TypeCustomerSource is a customer object charged by the platform.
	TypeCustomerSource AccountType = "customer-source"
)

func (t AccountType) Valid() bool {
	return t == TypePlatformAccount || t == TypeCustomerSource
}

// PaymentAccount links a user to a provider object. Account is the provider's
// JSON representation as last seen and is treated as opaque.
type PaymentAccount struct {
	UserID    string          `json:"userId"`
	Type      AccountType     `json:"type"`
	AccountID string          `json:"accountId"`
	Account   json.RawMessage `json:"account"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
