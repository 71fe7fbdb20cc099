package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status is the read state of a notification.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Common type tags.
const (
	TypeMessage = "message"
	TypeSystem  = "system"
)

// Notification is the durable record shown in a user's notification list.
// Records are created by the fan-out and only change state in bulk.
type Notification struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	User      bson.ObjectID  `bson:"user" json:"user"`
	Type      string         `bson:"type" json:"type"`
	Message   *bson.ObjectID `bson:"message,omitempty" json:"message,omitempty"`
	Messenger *bson.ObjectID `bson:"messenger,omitempty" json:"messenger,omitempty"`
	Title     string         `bson:"title,omitempty" json:"title,omitempty"`
	Body      string         `bson:"body,omitempty" json:"body,omitempty"`
	Status    Status         `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	User   bson.ObjectID
	Status Status
	Type   string
}

func (f Filter) match(n Notification) bool {
	return (f.User.IsZero() || n.User == f.User) &&
		(f.Status == "" || n.Status == f.Status) &&
		(f.Type == "" || n.Type == f.Type)
}

func (f Filter) bson() bson.M {
	m := bson.M{}
	if !f.User.IsZero() {
		m["user"] = f.User
	}
	if f.Status != "" {
		m["status"] = f.Status
	}
	if f.Type != "" {
		m["type"] = f.Type
	}
	return m
}
