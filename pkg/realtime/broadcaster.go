package realtime

import (
	"context"
	"sync"
)

// subscriber is one buffered receive channel. Sends never block; a full
// buffer drops the frame.
type subscriber struct {
	mu     sync.RWMutex
	ch     chan Envelope
	closed bool
}

func (s *subscriber) send(env Envelope) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- env:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// broadcaster fans frames out to its subscribers. Subscriptions end when
// their context is cancelled or the broadcaster is closed. onIdle, when set,
// runs after the last subscriber leaves.
type broadcaster struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	closed bool
	onIdle func()
}

func newBroadcaster(buffer int) *broadcaster {
	return &broadcaster{subs: make(map[*subscriber]struct{}), buffer: max(buffer, 1)}
}

func (b *broadcaster) subscribe(ctx context.Context) *subscriber {
	sub := &subscriber{ch: make(chan Envelope, b.buffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		sub.close()
		return sub
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()
	return sub
}

// publish returns the number of subscribers that accepted the frame.
func (b *broadcaster) publish(env Envelope) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for sub := range b.subs {
		if sub.send(env) {
			n++
		}
	}
	return n
}

func (b *broadcaster) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *broadcaster) unsubscribe(sub *subscriber) {
	b.mu.Lock()
	delete(b.subs, sub)
	idle := len(b.subs) == 0 && !b.closed
	b.mu.Unlock()
	sub.close()
	if idle && b.onIdle != nil {
		b.onIdle()
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.close()
	}
	clear(b.subs)
}
