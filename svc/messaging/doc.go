// Package messaging stores one-to-one conversations and their messages and
// orchestrates sending.
//
// Each pair of users shares at most one Conversation. The first message
// creates it as pending; it becomes accepted when the recipient replies or
// accepts, and rejected when the recipient rejects it. A rejected
// conversation takes no further messages.
//
// Send stores the message, updates the conversation's last message and then
// notifies in the background: the recipient gets a push, a realtime event
// and a stored notification, and the sender's conversation list is
// refreshed. Notification failures are logged and never fail the send.
package messaging
