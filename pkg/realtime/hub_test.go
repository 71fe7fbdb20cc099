package realtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/realtime"
)

func newHub(maxUsers int) *realtime.Hub {
	return realtime.NewHub(realtime.Config{BufferSize: 8, MaxUsers: maxUsers}, realtime.WithHubLogger(logger.Discard()))
}

func receive(t *testing.T, ch <-chan realtime.Envelope) realtime.Envelope {
	t.Helper()
	select {
	case env, ok := <-ch:
		require.True(t, ok, "channel closed")
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return realtime.Envelope{}
	}
}

func assertSilent(t *testing.T, ch <-chan realtime.Envelope) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("unexpected event %q", env.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Emit(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newHub(10)
	defer hub.Close()

	alice, err := hub.Subscribe(ctx, "alice")
	require.NoError(t, err)
	bob, err := hub.Subscribe(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, hub.Emit(ctx, "alice", "newMessage", map[string]string{"text": "hi"}))

	env := receive(t, alice)
	assert.Equal(t, "newMessage", env.Event)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "hi", payload["text"])

	assertSilent(t, bob)
	assert.True(t, hub.Online("alice"))
	assert.False(t, hub.Online("carol"))
}

func TestHub_EmitBroadcast(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newHub(10)
	defer hub.Close()

	a, err := hub.Subscribe(ctx, "alice")
	require.NoError(t, err)
	b, err := hub.Subscribe(ctx, "bob")
	require.NoError(t, err)

	require.NoError(t, hub.EmitBroadcast(ctx, "announcement", json.RawMessage(`{"v":1}`)))
	assert.JSONEq(t, `{"v":1}`, string(receive(t, a).Payload))
	assert.JSONEq(t, `{"v":1}`, string(receive(t, b).Payload))
}

func TestHub_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	hub := newHub(10)
	defer hub.Close()

	assert.ErrorIs(t, hub.Emit(ctx, "", "ev", nil), realtime.ErrEmptyTarget)
	assert.ErrorIs(t, hub.Emit(ctx, "alice", "", nil), realtime.ErrEmptyEvent)
	assert.ErrorIs(t, hub.EmitBroadcast(ctx, "ev", func() {}), realtime.ErrEncodePayload)
	_, err := hub.Subscribe(ctx, "")
	assert.ErrorIs(t, err, realtime.ErrEmptyTarget)

	// Offline users are not an error.
	assert.NoError(t, hub.Emit(ctx, "nobody", "ev", nil))
}

func TestHub_SubscriptionLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("cancel closes channel", func(t *testing.T) {
		t.Parallel()
		hub := newHub(10)
		defer hub.Close()

		ctx, cancel := context.WithCancel(context.Background())
		ch, err := hub.Subscribe(ctx, "alice")
		require.NoError(t, err)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-ch:
				return !ok
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("full hub keeps connected users", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hub := newHub(2)
		defer hub.Close()

		alice, err := hub.Subscribe(ctx, "alice")
		require.NoError(t, err)
		_, err = hub.Subscribe(ctx, "bob")
		require.NoError(t, err)

		_, err = hub.Subscribe(ctx, "carol")
		assert.ErrorIs(t, err, realtime.ErrHubFull)

		// A second session of a connected user is still accepted.
		again, err := hub.Subscribe(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, hub.Emit(ctx, "alice", "ping", nil))
		assert.Equal(t, "ping", receive(t, alice).Event)
		assert.Equal(t, "ping", receive(t, again).Event)
	})

	t.Run("disconnected users free their slot", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		hub := newHub(2)
		defer hub.Close()

		alice, err := hub.Subscribe(ctx, "alice")
		require.NoError(t, err)

		bobCtx, bobLeaves := context.WithCancel(ctx)
		_, err = hub.Subscribe(bobCtx, "bob")
		require.NoError(t, err)
		bobLeaves()
		require.Eventually(t, func() bool { return !hub.Online("bob") }, time.Second, 10*time.Millisecond)

		var carol <-chan realtime.Envelope
		require.Eventually(t, func() bool {
			carol, err = hub.Subscribe(ctx, "carol")
			return err == nil
		}, time.Second, 10*time.Millisecond)

		require.NoError(t, hub.Emit(ctx, "alice", "newMessage", nil))
		assert.Equal(t, "newMessage", receive(t, alice).Event)
		require.NoError(t, hub.Emit(ctx, "carol", "newMessage", nil))
		assert.Equal(t, "newMessage", receive(t, carol).Event)
		assert.True(t, hub.Online("alice"))
	})

	t.Run("closed hub", func(t *testing.T) {
		t.Parallel()
		hub := newHub(10)
		require.NoError(t, hub.Close())
		require.NoError(t, hub.Close())

		assert.ErrorIs(t, hub.Emit(context.Background(), "alice", "ev", nil), realtime.ErrHubClosed)
		_, err := hub.Subscribe(context.Background(), "alice")
		assert.ErrorIs(t, err, realtime.ErrHubClosed)
	})
}

func TestNewEnvelope(t *testing.T) {
	env, err := realtime.NewEnvelope("ev", nil)
	require.NoError(t, err)
	assert.Nil(t, env.Payload)

	env, err = realtime.NewEnvelope("ev", []byte(`[1,2]`))
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(env.Payload))

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"ev","payload":[1,2]}`, string(raw))
}
