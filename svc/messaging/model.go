package messaging

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/svc/user"
)

// ConversationStatus is pending, accepted or rejected.
type ConversationStatus string

const (
	StatusPending  ConversationStatus = "pending"
	StatusAccepted ConversationStatus = "accepted"
	StatusRejected ConversationStatus = "rejected"
)

// MessageStatus tracks whether the recipient has read a message.
type MessageStatus string

const (
	MessageSent MessageStatus = "sent"
	MessageRead MessageStatus = "read"
)

// Realtime event names.
const (
	EventNewMessage           = "newMessage"
	EventConversationsUpdated = "conversationsUpdated"
	EventMessagesRead         = "messagesRead"
)

// Attachment describes an uploaded file. Path is the storage path.
type Attachment struct {
	Path     string `bson:"path" json:"path"`
	Name     string `bson:"name,omitempty" json:"name,omitempty"`
	MimeType string `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
	Size     int64  `bson:"size,omitempty" json:"size,omitempty"`
}

// IsImage reports whether the attachment has stored image derivatives.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// Message is one message of a conversation. Text or Attachments is always set.
type Message struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserFrom     bson.ObjectID `bson:"userFrom" json:"userFrom"`
	UserTo       bson.ObjectID `bson:"userTo" json:"userTo"`
	Conversation bson.ObjectID `bson:"conversation" json:"conversation"`
	Text         string        `bson:"text,omitempty" json:"text,omitempty"`
	Attachments  []Attachment  `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Status       MessageStatus `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
}

// Conversation is the single thread between two users. UserFrom is whoever
// sent the first message. PairKey is the same for both orderings of the
// pair and is unique in storage.
type Conversation struct {
	ID          bson.ObjectID      `bson:"_id,omitempty" json:"id"`
	UserFrom    bson.ObjectID      `bson:"userFrom" json:"userFrom"`
	UserTo      bson.ObjectID      `bson:"userTo" json:"userTo"`
	PairKey     string             `bson:"pairKey" json:"-"`
	Status      ConversationStatus `bson:"status" json:"status"`
	LastMessage *bson.ObjectID     `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`

	// LastMessageObj is attached in memory for responses and never stored.
	LastMessageObj *Message `bson:"-" json:"lastMessageObj,omitempty"`
}

// Has reports whether id is one of the two participants.
func (c *Conversation) Has(id bson.ObjectID) bool {
	return c.UserFrom == id || c.UserTo == id
}

// Counterpart returns the participant that is not id.
func (c *Conversation) Counterpart(id bson.ObjectID) bson.ObjectID {
	if c.UserFrom == id {
		return c.UserTo
	}
	return c.UserFrom
}

// ConversationSummary is a listing row: the conversation joined with its
// last message and the other participant's profile.
type ConversationSummary struct {
	Conversation   `bson:",inline"`
	LastMessageObj *Message   `bson:"lastMessageObj,omitempty" json:"lastMessageObj,omitempty"`
	Counterpart    *user.User `bson:"counterpart,omitempty" json:"counterpart,omitempty"`
}

// PairKey returns the canonical key of an unordered user pair.
func PairKey(a, b bson.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}
