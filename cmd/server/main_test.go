package main

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/realtime"
)

func TestResolveUser(t *testing.T) {
	t.Parallel()
	id := bson.NewObjectID().Hex()

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("X-User-ID", id)
	got, err := resolveUser(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = resolveUser(httptest.NewRequest("GET", "/ws?user_id="+id, nil))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = resolveUser(httptest.NewRequest("GET", "/ws", nil))
	assert.ErrorIs(t, err, realtime.ErrUnauthorized)

	_, err = resolveUser(httptest.NewRequest("GET", "/ws?user_id=alice", nil))
	assert.ErrorIs(t, err, realtime.ErrUnauthorized)
}
