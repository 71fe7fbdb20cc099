package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/socialkit/pkg/cache"
	"github.com/dmitrymomot/socialkit/pkg/logger"
)

// Hub delivers events to sessions connected to this process. Each user has a
// broadcaster shared by all of their sessions. A user's entry exists only
// while they have at least one session, and at most maxUsers users may be
// connected at once.
type Hub struct {
	users    *cache.LRU[string, *broadcaster]
	global   *broadcaster
	buffer   int
	maxUsers int
	log      *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// HubOption configures a Hub.
type HubOption func(*Hub)

func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHub creates a hub with per-subscription buffers of cfg.BufferSize frames
// that accepts sessions from at most cfg.MaxUsers distinct users.
func NewHub(cfg Config, opts ...HubOption) *Hub {
	h := &Hub{
		buffer:   max(cfg.BufferSize, 1),
		maxUsers: max(cfg.MaxUsers, 1),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("realtime"))
	h.global = newBroadcaster(h.buffer)
	// Capacity is checked in Subscribe, so the LRU only evicts on Clear.
	h.users = cache.NewLRU(h.maxUsers, cache.OnEvict(func(_ string, b *broadcaster) {
		b.close()
	}))
	return h
}

var _ Emitter = (*Hub)(nil)

// Emit delivers to the sessions of userID. Users without a session are
// skipped silently.
func (h *Hub) Emit(ctx context.Context, userID, event string, payload any) error {
	if userID == "" {
		return ErrEmptyTarget
	}
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return h.deliver(ctx, userID, env)
}

// EmitBroadcast delivers to every session on this process.
func (h *Hub) EmitBroadcast(ctx context.Context, event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	return h.deliverAll(ctx, env)
}

func (h *Hub) deliver(ctx context.Context, userID string, env Envelope) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	b, ok := h.users.Get(userID)
	if !ok {
		h.log.DebugContext(ctx, "realtime target offline", logger.UserID(userID), logger.Event(env.Event))
		return nil
	}
	if n := b.publish(env); n == 0 {
		h.log.DebugContext(ctx, "realtime event dropped", logger.UserID(userID), logger.Event(env.Event))
	}
	return nil
}

func (h *Hub) deliverAll(ctx context.Context, env Envelope) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	n := h.global.publish(env)
	h.log.DebugContext(ctx, "realtime broadcast", logger.Event(env.Event), logger.Count("sessions", n))
	return nil
}

// Subscribe registers a session for userID. The returned channel carries both
// events addressed to the user and broadcasts, and is closed when ctx is
// cancelled or the hub shuts down. A new user is refused with ErrHubFull when
// MaxUsers users are already connected; sessions of connected users are never
// ended to make room.
func (h *Hub) Subscribe(ctx context.Context, userID string) (<-chan Envelope, error) {
	if userID == "" {
		return nil, ErrEmptyTarget
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	b, ok := h.users.Get(userID)
	if !ok {
		if h.users.Len() >= h.maxUsers {
			h.mu.Unlock()
			h.log.WarnContext(ctx, "realtime hub full", logger.UserID(userID), logger.Count("max_users", h.maxUsers))
			return nil, ErrHubFull
		}
		b = newBroadcaster(h.buffer)
		b.onIdle = func() { h.release(userID, b) }
		h.users.GetOrCreate(userID, func() *broadcaster { return b })
	}
	own := b.subscribe(ctx)
	all := h.global.subscribe(ctx)
	h.mu.Unlock()

	out := make(chan Envelope, h.buffer)
	go func() {
		defer close(out)
		for {
			var (
				env Envelope
				ok  bool
			)
			select {
			case env, ok = <-own.ch:
			case env, ok = <-all.ch:
			}
			if !ok {
				return
			}
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// release drops userID's entry once its broadcaster has no sessions left.
// Subscribe holds the same lock, so a session joining concurrently either
// lands before the size check or creates a fresh entry afterwards.
func (h *Hub) release(userID string, b *broadcaster) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || b.size() > 0 {
		return
	}
	if cur, ok := h.users.Get(userID); ok && cur == b {
		h.users.Remove(userID)
	}
}

// Online reports whether userID has at least one session on this process.
func (h *Hub) Online(userID string) bool {
	b, ok := h.users.Get(userID)
	return ok && b.size() > 0
}

// Close ends every subscription. Emits after Close return ErrHubClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.users.Clear()
	h.global.close()
	return nil
}
