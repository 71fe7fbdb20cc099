package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/svc/notification"
	"github.com/dmitrymomot/socialkit/svc/user"
)

const newMessageTitle = "New Message"

// announceMessage tells the recipient about a new message and refreshes the
// sender's conversation list.
func (s *Service) announceMessage(ctx context.Context, sender *user.User, msg *Message, conv Conversation) {
	body := fmt.Sprintf("%s sent you a message", displayName(sender))
	data := map[string]string{
		"type":           notification.TypeMessage,
		"conversationId": conv.ID.Hex(),
		"messageId":      msg.ID.Hex(),
	}

	s.detach(ctx, EventNewMessage, msg.ID, conv.ID, func(ctx context.Context) error {
		plan, err := notification.NewPlan(notification.ToUser(msg.UserTo),
			notification.Push{Title: newMessageTitle, Body: body, Data: data},
			notification.Realtime{Event: EventNewMessage, Payload: msg},
			notification.Record{
				Type:      notification.TypeMessage,
				Message:   &msg.ID,
				Messenger: &msg.UserFrom,
				Title:     newMessageTitle,
				Body:      body,
			},
		)
		if err != nil {
			return err
		}
		return s.notifier.Notify(ctx, plan)
	})

	s.announceConversation(ctx, msg.UserFrom, conv)
}

func (s *Service) announceConversation(ctx context.Context, to bson.ObjectID, conv Conversation) {
	s.detach(ctx, EventConversationsUpdated, bson.ObjectID{}, conv.ID, func(ctx context.Context) error {
		plan, err := notification.NewPlan(notification.ToUser(to),
			notification.Realtime{Event: EventConversationsUpdated, Payload: conv},
		)
		if err != nil {
			return err
		}
		return s.notifier.Notify(ctx, plan)
	})
}

type readReceipt struct {
	Conversation bson.ObjectID `json:"conversation"`
	ReadBy       bson.ObjectID `json:"readBy"`
}

func (s *Service) announceRead(ctx context.Context, to, conv, readBy bson.ObjectID) {
	s.detach(ctx, EventMessagesRead, bson.ObjectID{}, conv, func(ctx context.Context) error {
		plan, err := notification.NewPlan(notification.ToUser(to),
			notification.Realtime{Event: EventMessagesRead, Payload: readReceipt{Conversation: conv, ReadBy: readBy}},
		)
		if err != nil {
			return err
		}
		return s.notifier.Notify(ctx, plan)
	})
}

// detach runs a secondary notification in the background. Its failure is
// logged on the secondary path and never reaches the caller of the primary
// operation.
func (s *Service) detach(ctx context.Context, event string, msgID, convID bson.ObjectID, fn func(context.Context) error) {
	attrs := func(extra ...slog.Attr) []slog.Attr {
		return append([]slog.Attr{
			logger.Path("secondary"),
			logger.Event(event),
			logger.MessageID(msgID),
			logger.ConversationID(convID),
		}, extra...)
	}

	s.background.Detach(ctx, s.notifyTimeout,
		func(ctx context.Context) {
			if err := fn(ctx); err != nil {
				s.log.LogAttrs(ctx, slog.LevelError, "secondary notification failed", attrs(logger.Error(err))...)
			}
		},
		func(r any) {
			s.log.LogAttrs(ctx, slog.LevelError, "secondary notification panicked", attrs(slog.Any("panic", r))...)
		},
	)
}

func displayName(u *user.User) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return "Someone"
}
