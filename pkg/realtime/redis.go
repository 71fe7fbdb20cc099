package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/socialkit/pkg/logger"
)

// relayFrame is what travels over Redis between server instances.
type relayFrame struct {
	Target   string   `json:"target,omitempty"`
	Envelope Envelope `json:"envelope"`
}

// RedisEmitter publishes events to a Redis channel. Every instance runs Relay
// to forward frames from the channel into its local Hub, so a user connected
// to any instance receives the event.
type RedisEmitter struct {
	client  redis.UniversalClient
	channel string
	log     *slog.Logger
}

// NewRedisEmitter publishes envelopes to channel. Relay delivers them to a local Hub.
func NewRedisEmitter(client redis.UniversalClient, channel string, log *slog.Logger) *RedisEmitter {
	if log == nil {
		log = slog.Default()
	}
	return &RedisEmitter{client: client, channel: channel, log: log.With(logger.Component("realtime"))}
}

var _ Emitter = (*RedisEmitter)(nil)

func (e *RedisEmitter) Emit(ctx context.Context, userID, event string, payload any) error {
	if userID == "" {
		return ErrEmptyTarget
	}
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return e.publish(ctx, relayFrame{Target: userID, Envelope: env})
}

func (e *RedisEmitter) EmitBroadcast(ctx context.Context, event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return e.publish(ctx, relayFrame{Envelope: env})
}

func (e *RedisEmitter) publish(ctx context.Context, f relayFrame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return errors.Join(ErrEncodePayload, err)
	}
	if err := e.client.Publish(ctx, e.channel, b).Err(); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}

// Relay forwards frames from the Redis channel into hub until ctx is done.
func (e *RedisEmitter) Relay(ctx context.Context, hub *Hub) error {
	sub := e.client.Subscribe(ctx, e.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var f relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &f); err != nil {
				e.log.WarnContext(ctx, "invalid relay frame", logger.Error(err))
				continue
			}
			if f.Target != "" {
				err := hub.deliver(ctx, f.Target, f.Envelope)
				if errors.Is(err, ErrHubClosed) {
					return nil
				}
				continue
			}
			if err := hub.deliverAll(ctx, f.Envelope); errors.Is(err, ErrHubClosed) {
				return nil
			}
		}
	}
}
