// Package push sends push notifications to device tokens.
//
// FirebaseSender wraps Firebase Cloud Messaging multicast, splitting token
// sets above the provider limit into several requests and reporting tokens
// that should be unregistered. NoopSender is wired when push is disabled and
// RecordingSender is used by tests.
package push
