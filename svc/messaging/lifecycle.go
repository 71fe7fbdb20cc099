package messaging

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/statemachine"
)

type lifecycleEvent string

const (
	eventReply  lifecycleEvent = "reply"
	eventAccept lifecycleEvent = "accept"
	eventReject lifecycleEvent = "reject"
)

// actor is the guard input: who acts, and who the conversation's original
// recipient is.
type actor struct {
	user      bson.ObjectID
	recipient bson.ObjectID
}

func byRecipient(_ context.Context, _ ConversationStatus, _ lifecycleEvent, data any) bool {
	a, ok := data.(actor)
	return ok && a.user == a.recipient
}

// A pending conversation is accepted when its recipient replies or accepts,
// and rejected only by its recipient. Rejected is terminal.
var lifecycle = statemachine.MustNew(
	statemachine.WithTransition(StatusPending, StatusAccepted, eventReply, byRecipient),
	statemachine.WithSelfLoop[ConversationStatus](eventReply, StatusPending, StatusAccepted),
	statemachine.WithTransition(StatusPending, StatusAccepted, eventAccept, byRecipient),
	statemachine.WithTransition(StatusAccepted, StatusAccepted, eventAccept, byRecipient),
	statemachine.WithTransition(StatusPending, StatusRejected, eventReject, byRecipient),
)

func nextStatus(ctx context.Context, c *Conversation, ev lifecycleEvent, by bson.ObjectID) (ConversationStatus, error) {
	next, err := lifecycle.Next(ctx, c.Status, ev, actor{user: by, recipient: c.UserTo})
	switch {
	case err == nil:
		return next, nil
	case c.Status == StatusRejected:
		return c.Status, ErrConversationRejected
	case statemachine.IsRejected(err):
		return c.Status, ErrNotRecipient
	default:
		return c.Status, ErrConversationLocked
	}
}
