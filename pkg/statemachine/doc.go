// Package statemachine provides immutable, generic transition tables for
// status fields that live in a database.
//
// A Table holds no current state. Services load an entity, ask the table
// where an event leads, and persist the result:
//
//	var lifecycle = statemachine.MustNew(
//		statemachine.WithTransition(Pending, Accepted, Accept, isRecipient),
//		statemachine.WithTransition(Pending, Rejected, Reject, isRecipient),
//	)
//
//	next, err := lifecycle.Next(ctx, conv.Status, Accept, actorID)
//
// Guards receive the data passed to Next. When several transitions share a
// state and event, the first one whose guards pass is taken.
//
// Next returns *NoTransitionError when the state has no transition for the
// event and *RejectedError when every candidate was vetoed; use IsNoTransition
// and IsRejected to tell them apart.
package statemachine
