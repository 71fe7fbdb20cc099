package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/async"
	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/pkg/validator"
	"github.com/dmitrymomot/socialkit/svc/notification"
	"github.com/dmitrymomot/socialkit/svc/user"
)

const (
	maxTextLength        = 5000
	maxStatusAttempts    = 3
	defaultNotifyTimeout = 10 * time.Second
)

// Users is the directory lookup the service needs.
type Users interface {
	Exists(ctx context.Context, id bson.ObjectID) (bool, error)
	Get(ctx context.Context, id bson.ObjectID) (*user.User, error)
}

// Notifier delivers notification plans. *notification.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, plan notification.Plan) error
}

// FileCleaner removes stored attachment files. *file.Cleaner satisfies it.
type FileCleaner interface {
	DeleteImage(ctx context.Context, path string)
	DeleteAttachments(ctx context.Context, paths ...string)
}

type noopCleaner struct{}

func (noopCleaner) DeleteImage(context.Context, string)          {}
func (noopCleaner) DeleteAttachments(context.Context, ...string) {}

// Service orchestrates conversations and messages between two users and
// notifies participants in the background.
type Service struct {
	convs         ConversationStore
	msgs          MessageStore
	users         Users
	notifier      Notifier
	files         FileCleaner
	log           *slog.Logger
	now           func() time.Time
	notifyTimeout time.Duration
	background    async.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for background notification failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFileCleaner sets where attachment files of deleted messages go.
func WithFileCleaner(c FileCleaner) Option {
	return func(s *Service) {
		if c != nil {
			s.files = c
		}
	}
}

// WithNotifyTimeout bounds each background notification batch.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}

// NewService builds a Service. Without WithFileCleaner attachment files are left in place.
func NewService(convs ConversationStore, msgs MessageStore, users Users, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		convs:         convs,
		msgs:          msgs,
		users:         users,
		notifier:      notifier,
		files:         noopCleaner{},
		log:           slog.Default(),
		now:           func() time.Time { return time.Now().UTC() },
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("messaging"))
	return s
}

// Wait blocks until background notifications started so far have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// SendInput carries hex user ids as received from the client.
type SendInput struct {
	From        string
	To          string
	Text        string
	Attachments []Attachment
}

// Send appends a message to the conversation between From and To, creating
// the conversation on first contact. Notifications go out in the background
// after the message is stored; their failures are logged, never returned.
func (s *Service) Send(ctx context.Context, in SendInput) (*Message, error) {
	from, err := mongo.ParseID(in.From, ErrMissingSenderID, ErrInvalidSenderID)
	if err != nil {
		return nil, err
	}
	to, err := mongo.ParseID(in.To, ErrMissingRecipientID, ErrInvalidRecipientID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(in.Text)
	if err := validator.Check(
		validator.True("to", from != to, ErrSelfMessage.Message),
		validator.True("text", text != "" || len(in.Attachments) > 0, ErrEmptyMessage.Message),
		validator.MaxLen("text", text, maxTextLength).WithMessage(ErrMessageTooLong.Message),
		validator.True("attachments", validAttachments(in.Attachments), ErrInvalidAttachment.Message),
	); err != nil {
		return nil, err
	}

	sender, err := s.user(ctx, from)
	if err != nil {
		return nil, err
	}
	if _, err := s.user(ctx, to); err != nil {
		return nil, err
	}

	conv, _, err := s.convs.FindOrCreate(ctx, from, to, s.now())
	if err != nil {
		return nil, err
	}
	if conv, err = s.advance(ctx, conv, eventReply, from); err != nil {
		return nil, err
	}

	msg := &Message{
		UserFrom:     from,
		UserTo:       to,
		Conversation: conv.ID,
		Text:         text,
		Attachments:  in.Attachments,
		Status:       MessageSent,
		CreatedAt:    s.now(),
	}
	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.convs.SetLastMessage(ctx, conv.ID, &msg.ID, msg.CreatedAt); err != nil {
		return nil, err
	}
	conv.LastMessage = &msg.ID
	conv.LastMessageObj = msg
	conv.UpdatedAt = msg.CreatedAt

	s.log.DebugContext(ctx, "message sent",
		logger.MessageID(msg.ID),
		logger.ConversationID(conv.ID),
		logger.UserID(from),
	)

	s.announceMessage(ctx, sender, msg, *conv)
	return msg, nil
}

// Accept marks a pending conversation accepted. Only its recipient may.
func (s *Service) Accept(ctx context.Context, conversationID, userID string) (*Conversation, error) {
	return s.decide(ctx, conversationID, userID, eventAccept)
}

// Reject closes a pending conversation for good. Only its recipient may.
func (s *Service) Reject(ctx context.Context, conversationID, userID string) (*Conversation, error) {
	return s.decide(ctx, conversationID, userID, eventReject)
}

func (s *Service) decide(ctx context.Context, conversationID, userID string, ev lifecycleEvent) (*Conversation, error) {
	cid, err := mongo.ParseID(conversationID, ErrMissingConversationID, ErrInvalidConversationID)
	if err != nil {
		return nil, err
	}
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	conv, err := s.convs.Get(ctx, cid)
	if err != nil {
		return nil, err
	}
	if !conv.Has(uid) {
		return nil, ErrNotParticipant
	}

	before := conv.Status
	if conv, err = s.advance(ctx, conv, ev, uid); err != nil {
		return nil, err
	}
	if conv.Status != before {
		s.log.InfoContext(ctx, "conversation status changed",
			logger.ConversationID(conv.ID),
			logger.UserID(uid),
			slog.String("status", string(conv.Status)),
		)
		s.announceConversation(ctx, conv.UserFrom, *conv)
	}
	return conv, nil
}

// advance applies a lifecycle event and persists the change with a
// compare-and-set. When another writer moved the status first, the stored
// conversation is reloaded and the event is applied to it again.
func (s *Service) advance(ctx context.Context, conv *Conversation, ev lifecycleEvent, by bson.ObjectID) (*Conversation, error) {
	for range maxStatusAttempts {
		next, err := nextStatus(ctx, conv, ev, by)
		if err != nil {
			return nil, err
		}
		if next == conv.Status {
			return conv, nil
		}

		at := s.now()
		ok, err := s.convs.SetStatus(ctx, conv.ID, conv.Status, next, at)
		if err != nil {
			return nil, err
		}
		if ok {
			conv.Status = next
			conv.UpdatedAt = at
			return conv, nil
		}

		if conv, err = s.convs.Get(ctx, conv.ID); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("conversation %s: status kept changing", conv.ID.Hex())
}

// GetConversation returns the conversation with its last message attached.
func (s *Service) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	cid, err := mongo.ParseID(id, ErrMissingConversationID, ErrInvalidConversationID)
	if err != nil {
		return nil, err
	}
	conv, err := s.convs.Get(ctx, cid)
	if err != nil {
		return nil, err
	}
	if conv.LastMessage != nil {
		m, err := s.msgs.Get(ctx, *conv.LastMessage)
		switch {
		case err == nil:
			conv.LastMessageObj = m
		case !errors.Is(err, ErrMessageNotFound):
			return nil, err
		}
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently active
// first, optionally filtered by keyword.
func (s *Service) ListConversations(ctx context.Context, userID, keyword string, params mongo.PageParams) (mongo.Page[ConversationSummary], error) {
	uid, err := mongo.ParseID(userID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return mongo.Page[ConversationSummary]{}, err
	}
	return s.convs.List(ctx, ConversationQuery{User: uid, Keyword: keyword, PageParams: params})
}

// ListMessages returns a conversation's messages, newest first.
func (s *Service) ListMessages(ctx context.Context, conversationID string, params mongo.PageParams) (mongo.Page[Message], error) {
	cid, err := mongo.ParseID(conversationID, ErrMissingConversationID, ErrInvalidConversationID)
	if err != nil {
		return mongo.Page[Message]{}, err
	}
	if _, err := s.convs.Get(ctx, cid); err != nil {
		return mongo.Page[Message]{}, err
	}
	return s.msgs.List(ctx, cid, params)
}

// ReadMessages marks every message of the conversation addressed to the
// recipient as read. Repeating it is a no-op. When anything changed, the
// other participant gets a realtime event.
func (s *Service) ReadMessages(ctx context.Context, conversationID, recipientID string) error {
	cid, err := mongo.ParseID(conversationID, ErrMissingConversationID, ErrInvalidConversationID)
	if err != nil {
		return err
	}
	rid, err := mongo.ParseID(recipientID, ErrMissingUserID, ErrInvalidUserID)
	if err != nil {
		return err
	}

	ok, err := s.users.Exists(ctx, rid)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	conv, err := s.convs.Get(ctx, cid)
	if err != nil {
		return err
	}
	if !conv.Has(rid) {
		return ErrNotParticipant
	}

	changed, err := s.msgs.MarkRead(ctx, cid, rid)
	if err != nil {
		return err
	}
	if changed > 0 {
		s.announceRead(ctx, conv.Counterpart(rid), cid, rid)
	}
	return nil
}

// DeleteMessage removes a message and its attachment files. When it was the
// conversation's last message, the next newest one takes its place.
func (s *Service) DeleteMessage(ctx context.Context, id string) (*Message, error) {
	mid, err := mongo.ParseID(id, ErrMissingMessageID, ErrInvalidMessageID)
	if err != nil {
		return nil, err
	}
	msg, err := s.msgs.Delete(ctx, mid)
	if err != nil {
		return nil, err
	}

	if err := s.relinkLastMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.removeFiles(ctx, msg.Attachments)
	return msg, nil
}

func (s *Service) relinkLastMessage(ctx context.Context, deleted *Message) error {
	conv, err := s.convs.Get(ctx, deleted.Conversation)
	if errors.Is(err, ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if conv.LastMessage == nil || *conv.LastMessage != deleted.ID {
		return nil
	}

	latest, err := s.msgs.List(ctx, conv.ID, mongo.PageParams{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	var ref *bson.ObjectID
	if len(latest.Data) > 0 {
		ref = &latest.Data[0].ID
	}
	return s.convs.SetLastMessage(ctx, conv.ID, ref, conv.UpdatedAt)
}

// DeleteConversation removes the conversation, every message in it and
// their attachment files.
func (s *Service) DeleteConversation(ctx context.Context, id string) (*Conversation, error) {
	cid, err := mongo.ParseID(id, ErrMissingConversationID, ErrInvalidConversationID)
	if err != nil {
		return nil, err
	}
	if _, err := s.convs.Get(ctx, cid); err != nil {
		return nil, err
	}

	msgs, err := s.msgs.DeleteByConversation(ctx, cid)
	if err != nil {
		return nil, err
	}
	conv, err := s.convs.Delete(ctx, cid)
	if err != nil {
		return nil, err
	}

	for _, m := range msgs {
		s.removeFiles(ctx, m.Attachments)
	}
	s.log.InfoContext(ctx, "conversation deleted",
		logger.ConversationID(cid),
		logger.Count("messages", len(msgs)),
	)
	return conv, nil
}

func (s *Service) removeFiles(ctx context.Context, attachments []Attachment) {
	var plain []string
	for _, a := range attachments {
		if a.IsImage() {
			s.files.DeleteImage(ctx, a.Path)
			continue
		}
		plain = append(plain, a.Path)
	}
	if len(plain) > 0 {
		s.files.DeleteAttachments(ctx, plain...)
	}
}

func (s *Service) user(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func validAttachments(atts []Attachment) bool {
	for _, a := range atts {
		if strings.TrimSpace(a.Path) == "" || a.Size < 0 {
			return false
		}
	}
	return true
}
