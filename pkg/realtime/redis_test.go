package realtime_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/realtime"
)

func TestRedisEmitter_Relay(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := newHub(10)
	defer hub.Close()
	emitter := realtime.NewRedisEmitter(client, "test:realtime:"+t.Name(), logger.Discard())

	relayDone := make(chan error, 1)
	go func() { relayDone <- emitter.Relay(ctx, hub) }()

	ch, err := hub.Subscribe(ctx, "alice")
	require.NoError(t, err)

	// The relay subscribes asynchronously; publish until the frame arrives.
	var env realtime.Envelope
	require.Eventually(t, func() bool {
		_ = emitter.Emit(ctx, "alice", "newMessage", map[string]string{"id": "1"})
		select {
		case env = <-ch:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "newMessage", env.Event)

	require.NoError(t, emitter.EmitBroadcast(ctx, "announcement", nil))
	for receive(t, ch).Event != "announcement" {
		// skip duplicates published while waiting for the relay
	}

	cancel()
	select {
	case err := <-relayDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
