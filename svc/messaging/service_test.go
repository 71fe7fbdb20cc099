package messaging_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/apperror"
	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/pkg/push"
	"github.com/dmitrymomot/socialkit/pkg/realtime"
	"github.com/dmitrymomot/socialkit/svc/messaging"
	"github.com/dmitrymomot/socialkit/svc/notification"
	"github.com/dmitrymomot/socialkit/svc/user"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type recordingCleaner struct {
	mu          sync.Mutex
	images      []string
	attachments []string
}

func (c *recordingCleaner) DeleteImage(_ context.Context, p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = append(c.images, p)
}

func (c *recordingCleaner) DeleteAttachments(_ context.Context, paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachments = append(c.attachments, paths...)
}

type fixture struct {
	svc     *messaging.Service
	convs   *messaging.MemoryConversationStore
	msgs    *messaging.MemoryMessageStore
	records *notification.MemoryStore
	sender  *push.RecordingSender
	emitter *realtime.RecordingEmitter
	files   *recordingCleaner
	logs    *syncBuffer

	alice, bob, carol user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		records: notification.NewMemoryStore(),
		sender:  &push.RecordingSender{},
		emitter: &realtime.RecordingEmitter{},
		files:   &recordingCleaner{},
		logs:    &syncBuffer{},
		alice:   user.User{ID: bson.NewObjectID(), Name: "Alice", PushTokens: []string{"alice-phone"}},
		bob:     user.User{ID: bson.NewObjectID(), Name: "Bob", PushTokens: []string{"bob-phone"}},
		carol:   user.User{ID: bson.NewObjectID(), Name: "Carol"},
	}
	dir := user.NewMemoryDirectory(f.alice, f.bob, f.carol)
	log := logger.New(logger.WithOutput(f.logs), logger.WithFormat(logger.FormatJSON))

	f.convs, f.msgs = messaging.NewMemoryStores(dir)
	notifier := notification.NewNotifier(f.records, dir, f.sender, f.emitter,
		notification.WithNotifierLogger(log))
	f.svc = messaging.NewService(f.convs, f.msgs, dir, notifier,
		messaging.WithLogger(log),
		messaging.WithFileCleaner(f.files),
		messaging.WithNotifyTimeout(5*time.Second),
	)
	t.Cleanup(f.svc.Wait)
	return f
}

func (f *fixture) send(t *testing.T, from, to user.User, text string) *messaging.Message {
	t.Helper()
	msg, err := f.svc.Send(context.Background(), messaging.SendInput{From: from.ID.Hex(), To: to.ID.Hex(), Text: text})
	require.NoError(t, err)
	return msg
}

func (f *fixture) conversation(t *testing.T, a, b user.User) *messaging.Conversation {
	t.Helper()
	c, err := f.convs.FindByPair(context.Background(), a.ID, b.ID)
	require.NoError(t, err)
	return c
}

func (f *fixture) emissionsFor(userID bson.ObjectID, event string) []realtime.Emission {
	var out []realtime.Emission
	for _, e := range f.emitter.Emissions() {
		if e.UserID == userID.Hex() && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func TestService_Send(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first contact creates pending conversation and message", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		msg := f.send(t, f.alice, f.bob, "  hello bob  ")
		assert.Equal(t, "hello bob", msg.Text)
		assert.Equal(t, messaging.MessageSent, msg.Status)

		conv := f.conversation(t, f.alice, f.bob)
		assert.Equal(t, messaging.StatusPending, conv.Status)
		assert.Equal(t, f.alice.ID, conv.UserFrom)
		assert.Equal(t, f.bob.ID, conv.UserTo)
		require.NotNil(t, conv.LastMessage)
		assert.Equal(t, msg.ID, *conv.LastMessage)
		assert.Equal(t, conv.ID, msg.Conversation)

		page, err := f.msgs.List(ctx, conv.ID, mongo.PageParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalCount)
	})

	t.Run("recipient reply accepts exactly once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		f.send(t, f.alice, f.bob, "hi")
		f.send(t, f.alice, f.bob, "anyone there?")
		assert.Equal(t, messaging.StatusPending, f.conversation(t, f.alice, f.bob).Status, "initiator cannot accept")

		f.send(t, f.bob, f.alice, "hey")
		first := f.conversation(t, f.alice, f.bob)
		assert.Equal(t, messaging.StatusAccepted, first.Status)
		assert.Equal(t, f.alice.ID, first.UserFrom, "roles never swap")

		f.send(t, f.alice, f.bob, "great")
		f.send(t, f.bob, f.alice, "indeed")
		second := f.conversation(t, f.alice, f.bob)
		assert.Equal(t, messaging.StatusAccepted, second.Status)
		assert.Equal(t, first.ID, second.ID, "one conversation per pair")
	})

	t.Run("rejected conversation refuses messages", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.send(t, f.alice, f.bob, "hi")
		conv := f.conversation(t, f.alice, f.bob)

		_, err := f.svc.Reject(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		require.NoError(t, err)

		for _, pair := range [][2]user.User{{f.alice, f.bob}, {f.bob, f.alice}} {
			_, err = f.svc.Send(ctx, messaging.SendInput{From: pair[0].ID.Hex(), To: pair[1].ID.Hex(), Text: "again"})
			assert.ErrorIs(t, err, messaging.ErrConversationRejected)
			assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
		}

		page, err := f.msgs.List(ctx, conv.ID, mongo.PageParams{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalCount, "no message created")
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		a, b := f.alice.ID.Hex(), f.bob.ID.Hex()

		tests := []struct {
			name string
			in   messaging.SendInput
			want error
		}{
			{"missing sender", messaging.SendInput{To: b, Text: "x"}, messaging.ErrMissingSenderID},
			{"invalid sender", messaging.SendInput{From: "nope", To: b, Text: "x"}, messaging.ErrInvalidSenderID},
			{"missing recipient", messaging.SendInput{From: a, Text: "x"}, messaging.ErrMissingRecipientID},
			{"invalid recipient", messaging.SendInput{From: a, To: "123", Text: "x"}, messaging.ErrInvalidRecipientID},
			{"self", messaging.SendInput{From: a, To: a, Text: "x"}, messaging.ErrSelfMessage},
			{"empty", messaging.SendInput{From: a, To: b, Text: "   "}, messaging.ErrEmptyMessage},
			{"bad attachment", messaging.SendInput{From: a, To: b, Attachments: []messaging.Attachment{{Name: "x"}}}, messaging.ErrInvalidAttachment},
			{"unknown recipient", messaging.SendInput{From: a, To: bson.NewObjectID().Hex(), Text: "x"}, messaging.ErrUserNotFound},
			{"unknown sender", messaging.SendInput{From: bson.NewObjectID().Hex(), To: b, Text: "x"}, messaging.ErrUserNotFound},
		}
		for _, tt := range tests {
			_, err := f.svc.Send(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want, tt.name)
		}

		_, err := f.convs.FindByPair(ctx, f.alice.ID, f.bob.ID)
		assert.ErrorIs(t, err, messaging.ErrConversationNotFound, "nothing persisted")
	})

	t.Run("attachment only message", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		msg, err := f.svc.Send(ctx, messaging.SendInput{
			From:        f.alice.ID.Hex(),
			To:          f.bob.ID.Hex(),
			Attachments: []messaging.Attachment{{Path: "uploads/cat.png", MimeType: "image/png", Size: 10}},
		})
		require.NoError(t, err)
		assert.Len(t, msg.Attachments, 1)
	})

	t.Run("notifies recipient and refreshes sender", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		msg := f.send(t, f.alice, f.bob, "hello")
		f.svc.Wait()

		pushes := f.sender.Messages()
		require.Len(t, pushes, 1)
		assert.Equal(t, []string{"bob-phone"}, pushes[0].Tokens)
		assert.Equal(t, "New Message", pushes[0].Title)
		assert.Equal(t, "Alice sent you a message", pushes[0].Body)
		assert.Equal(t, msg.ID.Hex(), pushes[0].Data["messageId"])

		require.Len(t, f.emissionsFor(f.bob.ID, messaging.EventNewMessage), 1)
		updates := f.emissionsFor(f.alice.ID, messaging.EventConversationsUpdated)
		require.Len(t, updates, 1)
		snapshot, ok := updates[0].Payload.(messaging.Conversation)
		require.True(t, ok)
		require.NotNil(t, snapshot.LastMessageObj)
		assert.Equal(t, msg.ID, snapshot.LastMessageObj.ID)
		assert.Empty(t, f.emissionsFor(f.bob.ID, messaging.EventConversationsUpdated))

		recs, err := f.records.List(ctx, notification.Filter{User: f.bob.ID}, mongo.PageParams{})
		require.NoError(t, err)
		require.Len(t, recs.Data, 1)
		assert.Equal(t, notification.TypeMessage, recs.Data[0].Type)
		assert.Equal(t, &msg.ID, recs.Data[0].Message)
		assert.Equal(t, &f.alice.ID, recs.Data[0].Messenger)
	})

	t.Run("secondary failures are logged not returned", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.sender.Err = errors.New("fcm unavailable")
		f.emitter.Err = errors.New("hub closed")

		msg, err := f.svc.Send(ctx, messaging.SendInput{From: f.alice.ID.Hex(), To: f.bob.ID.Hex(), Text: "hi"})
		require.NoError(t, err)
		require.NotNil(t, msg)
		f.svc.Wait()

		logs := f.logs.String()
		assert.Contains(t, logs, `"msg":"secondary notification failed"`)
		assert.Contains(t, logs, `"path":"secondary"`)
		assert.Contains(t, logs, `"component":"messaging"`)
		assert.Contains(t, logs, "fcm unavailable")

		recs, err := f.records.List(ctx, notification.Filter{User: f.bob.ID}, mongo.PageParams{})
		require.NoError(t, err)
		assert.Len(t, recs.Data, 1, "record channel unaffected")
	})

	t.Run("concurrent first contact yields one conversation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		var wg sync.WaitGroup
		for i := range 20 {
			from, to := f.alice, f.bob
			if i%2 == 1 {
				from, to = to, from
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.Send(ctx, messaging.SendInput{From: from.ID.Hex(), To: to.ID.Hex(), Text: "race"})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		page, err := f.convs.List(ctx, messaging.ConversationQuery{User: f.alice.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalCount)

		msgs, err := f.msgs.List(ctx, page.Data[0].ID, mongo.PageParams{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(20), msgs.TotalCount)
	})
}

func TestService_AcceptReject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recipient accepts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.send(t, f.alice, f.bob, "hi")
		conv := f.conversation(t, f.alice, f.bob)

		got, err := f.svc.Accept(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, messaging.StatusAccepted, got.Status)

		got, err = f.svc.Accept(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		require.NoError(t, err, "idempotent")
		assert.Equal(t, messaging.StatusAccepted, got.Status)

		_, err = f.svc.Reject(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrConversationLocked)

		f.svc.Wait()
		assert.Len(t, f.emissionsFor(f.alice.ID, messaging.EventConversationsUpdated), 2,
			"one for the send, one for the status change")
	})

	t.Run("only the recipient decides", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.send(t, f.alice, f.bob, "hi")
		conv := f.conversation(t, f.alice, f.bob)

		_, err := f.svc.Accept(ctx, conv.ID.Hex(), f.alice.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrNotRecipient)
		_, err = f.svc.Reject(ctx, conv.ID.Hex(), f.alice.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrNotRecipient)
		_, err = f.svc.Reject(ctx, conv.ID.Hex(), f.carol.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrNotParticipant)

		assert.Equal(t, messaging.StatusPending, f.conversation(t, f.alice, f.bob).Status)
	})

	t.Run("rejected is terminal", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.send(t, f.alice, f.bob, "hi")
		conv := f.conversation(t, f.alice, f.bob)

		got, err := f.svc.Reject(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, messaging.StatusRejected, got.Status)

		_, err = f.svc.Accept(ctx, conv.ID.Hex(), f.bob.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrConversationRejected)
	})

	t.Run("bad ids", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.Accept(ctx, "", f.bob.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrMissingConversationID)
		_, err = f.svc.Accept(ctx, bson.NewObjectID().Hex(), "x")
		assert.ErrorIs(t, err, messaging.ErrInvalidUserID)
		_, err = f.svc.Accept(ctx, bson.NewObjectID().Hex(), f.bob.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrConversationNotFound)
	})
}

func TestService_ReadMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.send(t, f.alice, f.bob, "one")
	f.send(t, f.alice, f.bob, "two")
	f.send(t, f.bob, f.alice, "three")
	conv := f.conversation(t, f.alice, f.bob)

	require.NoError(t, f.svc.ReadMessages(ctx, conv.ID.Hex(), f.bob.ID.Hex()))

	page, err := f.msgs.List(ctx, conv.ID, mongo.PageParams{})
	require.NoError(t, err)
	for _, m := range page.Data {
		if m.UserTo == f.bob.ID {
			assert.Equal(t, messaging.MessageRead, m.Status)
		} else {
			assert.Equal(t, messaging.MessageSent, m.Status, "alice's inbox untouched")
		}
	}

	require.NoError(t, f.svc.ReadMessages(ctx, conv.ID.Hex(), f.bob.ID.Hex()), "idempotent")
	f.svc.Wait()
	assert.Len(t, f.emissionsFor(f.alice.ID, messaging.EventMessagesRead), 1, "emitted only when something changed")

	err = f.svc.ReadMessages(ctx, conv.ID.Hex(), bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, messaging.ErrUserNotFound)
	err = f.svc.ReadMessages(ctx, bson.NewObjectID().Hex(), f.bob.ID.Hex())
	assert.ErrorIs(t, err, messaging.ErrConversationNotFound)
	err = f.svc.ReadMessages(ctx, conv.ID.Hex(), f.carol.ID.Hex())
	assert.ErrorIs(t, err, messaging.ErrNotParticipant)
}

func TestService_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.send(t, f.alice, f.bob, "Lunch tomorrow?")
	f.send(t, f.carol, f.alice, "project update")

	t.Run("conversations newest first", func(t *testing.T) {
		page, err := f.svc.ListConversations(ctx, f.alice.ID.Hex(), "", mongo.PageParams{})
		require.NoError(t, err)
		require.Equal(t, int64(2), page.TotalCount)
		assert.Equal(t, int64(1), page.TotalPages)
		assert.Equal(t, f.carol.ID, page.Data[0].Counterpart.ID)
		require.NotNil(t, page.Data[1].LastMessageObj)
		assert.Equal(t, "Lunch tomorrow?", page.Data[1].LastMessageObj.Text)
	})

	t.Run("keyword matches text case-insensitively", func(t *testing.T) {
		page, err := f.svc.ListConversations(ctx, f.alice.ID.Hex(), "LUNCH", mongo.PageParams{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, f.bob.ID, page.Data[0].Counterpart.ID)
	})

	t.Run("keyword matches counterpart name", func(t *testing.T) {
		page, err := f.svc.ListConversations(ctx, f.alice.ID.Hex(), "car", mongo.PageParams{})
		require.NoError(t, err)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Carol", page.Data[0].Counterpart.Name)
	})

	t.Run("no match gives empty page", func(t *testing.T) {
		page, err := f.svc.ListConversations(ctx, f.alice.ID.Hex(), "zzz", mongo.PageParams{})
		require.NoError(t, err)
		assert.Equal(t, mongo.Page[messaging.ConversationSummary]{Data: []messaging.ConversationSummary{}}, page)
	})

	t.Run("messages paginate newest first", func(t *testing.T) {
		conv := f.conversation(t, f.alice, f.bob)
		f.send(t, f.bob, f.alice, "sure")
		f.send(t, f.alice, f.bob, "noon")

		page, err := f.svc.ListMessages(ctx, conv.ID.Hex(), mongo.PageParams{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalCount)
		assert.Equal(t, int64(2), page.TotalPages)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "noon", page.Data[0].Text)

		_, err = f.svc.ListMessages(ctx, bson.NewObjectID().Hex(), mongo.PageParams{})
		assert.ErrorIs(t, err, messaging.ErrConversationNotFound)
	})

	t.Run("get conversation attaches last message", func(t *testing.T) {
		conv := f.conversation(t, f.carol, f.alice)
		got, err := f.svc.GetConversation(ctx, conv.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, got.LastMessageObj)
		assert.Equal(t, "project update", got.LastMessageObj.Text)
	})
}

func TestService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("message removes files and relinks last message", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		first := f.send(t, f.alice, f.bob, "first")
		last, err := f.svc.Send(ctx, messaging.SendInput{
			From: f.alice.ID.Hex(),
			To:   f.bob.ID.Hex(),
			Attachments: []messaging.Attachment{
				{Path: "uploads/photo.jpg", MimeType: "image/jpeg"},
				{Path: "uploads/doc.pdf", MimeType: "application/pdf"},
			},
		})
		require.NoError(t, err)

		deleted, err := f.svc.DeleteMessage(ctx, last.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, last.ID, deleted.ID)
		assert.Equal(t, []string{"uploads/photo.jpg"}, f.files.images)
		assert.Equal(t, []string{"uploads/doc.pdf"}, f.files.attachments)

		conv := f.conversation(t, f.alice, f.bob)
		require.NotNil(t, conv.LastMessage)
		assert.Equal(t, first.ID, *conv.LastMessage)

		_, err = f.svc.DeleteMessage(ctx, last.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrMessageNotFound)
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("conversation removes messages and files", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.send(t, f.alice, f.bob, "hi")
		_, err := f.svc.Send(ctx, messaging.SendInput{
			From:        f.bob.ID.Hex(),
			To:          f.alice.ID.Hex(),
			Attachments: []messaging.Attachment{{Path: "uploads/a.png", MimeType: "image/png"}},
		})
		require.NoError(t, err)
		conv := f.conversation(t, f.alice, f.bob)

		deleted, err := f.svc.DeleteConversation(ctx, conv.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, conv.ID, deleted.ID)
		assert.Equal(t, []string{"uploads/a.png"}, f.files.images)

		page, err := f.msgs.List(ctx, conv.ID, mongo.PageParams{})
		require.NoError(t, err)
		assert.Zero(t, page.TotalCount)

		_, err = f.svc.DeleteConversation(ctx, conv.ID.Hex())
		assert.ErrorIs(t, err, messaging.ErrConversationNotFound)

		msg := f.send(t, f.alice, f.bob, "fresh start")
		assert.NotEqual(t, conv.ID, msg.Conversation)
	})
}
