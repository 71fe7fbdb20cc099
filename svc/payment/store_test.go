package payment_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/pg"
	"github.com/dmitrymomot/socialkit/svc/payment"
)

func testAccountStore(t *testing.T, store payment.AccountStore) {
	ctx := context.Background()
	uid := bson.NewObjectID().Hex()
	acctID := "acct_" + bson.NewObjectID().Hex()

	acc := &payment.PaymentAccount{
		UserID:    uid,
		Type:      payment.TypePlatformAccount,
		AccountID: acctID,
		Account:   json.RawMessage(`{"charges_enabled":false}`),
	}
	require.NoError(t, store.Save(ctx, acc))
	created := acc.CreatedAt
	assert.False(t, created.IsZero())

	got, err := store.Get(ctx, uid, payment.TypePlatformAccount)
	require.NoError(t, err)
	assert.Equal(t, acctID, got.AccountID)
	assert.JSONEq(t, `{"charges_enabled":false}`, string(got.Account))

	_, err = store.Get(ctx, uid, payment.TypeCustomerSource)
	assert.ErrorIs(t, err, payment.ErrAccountNotFound)

	got.Account = json.RawMessage(`{"charges_enabled":true}`)
	require.NoError(t, store.Save(ctx, got))
	byID, err := store.GetByAccountID(ctx, acctID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"charges_enabled":true}`, string(byID.Account))
	assert.True(t, byID.CreatedAt.Equal(created))

	other := &payment.PaymentAccount{UserID: bson.NewObjectID().Hex(), Type: payment.TypePlatformAccount, AccountID: acctID}
	assert.ErrorIs(t, store.Save(ctx, other), payment.ErrAccountIDConflict)

	assert.ErrorIs(t, store.Save(ctx, &payment.PaymentAccount{UserID: uid, Type: "wallet", AccountID: "x"}), payment.ErrInvalidAccountType)

	deleted, err := store.Delete(ctx, uid, payment.TypePlatformAccount)
	require.NoError(t, err)
	assert.Equal(t, acctID, deleted.AccountID)

	_, err = store.Delete(ctx, uid, payment.TypePlatformAccount)
	assert.ErrorIs(t, err, payment.ErrAccountNotFound)
	_, err = store.GetByAccountID(ctx, acctID)
	assert.ErrorIs(t, err, payment.ErrAccountNotFound)
}

func TestMemoryAccountStore(t *testing.T) {
	t.Parallel()
	testAccountStore(t, payment.NewMemoryAccountStore())
}

func TestPgAccountStore(t *testing.T) {
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL is not set")
	}
	ctx := context.Background()

	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     2,
		RetryAttempts:    1,
		MigrationsPath:   "migrations",
		MigrationsTable:  "payment_schema_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pg.Migrate(ctx, pool, cfg, payment.Migrations, slog.Default()))

	testAccountStore(t, payment.NewPgAccountStore(pool))
}
