package statemachine

// Option configures a Table during construction.
type Option[S, E comparable] func(*Table[S, E]) error

// WithTransition registers from --event--> to, taken only when every guard
// passes.
func WithTransition[S, E comparable](from, to S, event E, guards ...Guard[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		t.add(Transition[S, E]{From: from, To: to, Event: event, Guards: guards})
		return nil
	}
}

// WithTransitions registers several transitions in order.
func WithTransitions[S, E comparable](transitions ...Transition[S, E]) Option[S, E] {
	return func(t *Table[S, E]) error {
		for _, tr := range transitions {
			t.add(tr)
		}
		return nil
	}
}

// WithSelfLoop registers event as a no-op in each of the given states.
func WithSelfLoop[S, E comparable](event E, states ...S) Option[S, E] {
	return func(t *Table[S, E]) error {
		for _, s := range states {
			t.add(Transition[S, E]{From: s, To: s, Event: event})
		}
		return nil
	}
}
