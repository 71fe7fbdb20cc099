package push

import (
	"context"
	"slices"
	"sync"
)

// NoopSender accepts every message and delivers nothing. Used when push is
// disabled.
type NoopSender struct{}

func (NoopSender) Multicast(context.Context, Message) (*Result, error) {
	return &Result{}, nil
}

// RecordingSender keeps every message it is asked to send. Err, when set, is
// returned from each call after recording.
type RecordingSender struct {
	mu       sync.Mutex
	messages []Message
	Err      error
	Invalid  []string
}

func (r *RecordingSender) Multicast(_ context.Context, msg Message) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.Tokens = slices.Clone(msg.Tokens)
	r.messages = append(r.messages, msg)
	if r.Err != nil {
		return nil, r.Err
	}
	return &Result{SuccessCount: len(msg.Tokens) - len(r.Invalid), InvalidTokens: r.Invalid}, nil
}

func (r *RecordingSender) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}
