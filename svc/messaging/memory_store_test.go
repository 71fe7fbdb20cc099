package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/svc/messaging"
	"github.com/dmitrymomot/socialkit/svc/user"
)

func TestMemoryConversationStore_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("without profile reader", func(t *testing.T) {
		t.Parallel()
		convs, _ := messaging.NewMemoryStores(nil)
		me, other := bson.NewObjectID(), bson.NewObjectID()
		_, _, err := convs.FindOrCreate(ctx, me, other, now)
		require.NoError(t, err)

		page, err := convs.List(ctx, messaging.ConversationQuery{User: me})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Nil(t, page.Data[0].Counterpart)
	})

	t.Run("counterpart resolved from either side", func(t *testing.T) {
		t.Parallel()
		alice := user.User{ID: bson.NewObjectID(), Name: "Alice"}
		bob := user.User{ID: bson.NewObjectID(), Name: "Bob"}
		convs, _ := messaging.NewMemoryStores(user.NewMemoryDirectory(alice, bob))
		_, _, err := convs.FindOrCreate(ctx, alice.ID, bob.ID, now)
		require.NoError(t, err)

		page, err := convs.List(ctx, messaging.ConversationQuery{User: bob.ID, PageParams: mongo.PageParams{Page: 1, Limit: 5}})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		require.NotNil(t, page.Data[0].Counterpart)
		assert.Equal(t, "Alice", page.Data[0].Counterpart.Name)
	})
}
