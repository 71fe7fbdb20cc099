package statemachine

import (
	"context"
	"fmt"
)

// Guard decides at runtime whether a transition may be taken. data is
// whatever the caller passed to Next.
type Guard[S, E comparable] func(ctx context.Context, from S, event E, data any) bool

// Transition moves from From to To on Event when every guard passes.
type Transition[S, E comparable] struct {
	From   S
	To     S
	Event  E
	Guards []Guard[S, E]
}

func (t Transition[S, E]) allowed(ctx context.Context, event E, data any) bool {
	for _, g := range t.Guards {
		if g != nil && !g(ctx, t.From, event, data) {
			return false
		}
	}
	return true
}

// Table is an immutable transition table. It holds no current state: the
// caller owns the state, typically a persisted status field, and asks the
// table where an event leads. A Table is safe for concurrent use once built.
type Table[S, E comparable] struct {
	transitions map[S]map[E][]Transition[S, E]
}

// New builds a table from options.
func New[S, E comparable](opts ...Option[S, E]) (*Table[S, E], error) {
	t := &Table[S, E]{transitions: make(map[S]map[E][]Transition[S, E])}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustNew is New that panics on error, for package-level tables.
func MustNew[S, E comparable](opts ...Option[S, E]) *Table[S, E] {
	t, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("statemachine: %v", err))
	}
	return t
}

func (t *Table[S, E]) add(tr Transition[S, E]) {
	byEvent, ok := t.transitions[tr.From]
	if !ok {
		byEvent = make(map[E][]Transition[S, E])
		t.transitions[tr.From] = byEvent
	}
	// Several transitions per from/event are allowed; the first whose guards
	// pass wins, so registration order is priority order.
	byEvent[tr.Event] = append(byEvent[tr.Event], tr)
}

// Next returns the state event leads to from the given state.
func (t *Table[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	candidates := t.transitions[from][event]
	if len(candidates) == 0 {
		return from, &NoTransitionError{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
	}
	for _, tr := range candidates {
		if tr.allowed(ctx, event, data) {
			return tr.To, nil
		}
	}
	return from, &RejectedError{State: fmt.Sprint(from), Event: fmt.Sprint(event)}
}

// Can reports whether Next would succeed.
func (t *Table[S, E]) Can(ctx context.Context, from S, event E, data any) bool {
	_, err := t.Next(ctx, from, event, data)
	return err == nil
}

// Terminal reports whether no event leaves state s.
func (t *Table[S, E]) Terminal(s S) bool {
	return len(t.transitions[s]) == 0
}
