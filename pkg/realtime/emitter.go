package realtime

import (
	"context"
	"slices"
	"sync"
)

// Emitter pushes events to connected sessions. Delivery is fire-and-forget:
// a nil error means the event was handed to the transport, not that any
// session received it.
type Emitter interface {
	// Emit sends the event to every session of one user.
	Emit(ctx context.Context, userID, event string, payload any) error
	// EmitBroadcast sends the event to every connected session.
	EmitBroadcast(ctx context.Context, event string, payload any) error
}

// Emission is one call captured by RecordingEmitter. UserID is empty for
// broadcasts.
type Emission struct {
	UserID  string
	Event   string
	Payload any
}

// RecordingEmitter keeps every emission instead of delivering it. Err, when
// set, is returned from each call after recording.
type RecordingEmitter struct {
	mu        sync.Mutex
	emissions []Emission
	Err       error
}

func (r *RecordingEmitter) Emit(_ context.Context, userID, event string, payload any) error {
	return r.record(Emission{UserID: userID, Event: event, Payload: payload})
}

func (r *RecordingEmitter) EmitBroadcast(_ context.Context, event string, payload any) error {
	return r.record(Emission{Event: event, Payload: payload})
}

func (r *RecordingEmitter) record(e Emission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = append(r.emissions, e)
	return r.Err
}

func (r *RecordingEmitter) Emissions() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.emissions)
}
