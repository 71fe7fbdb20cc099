package realtime

import "errors"

var (
	ErrEmptyEvent    = errors.New("realtime: event name is required")
	ErrEmptyTarget   = errors.New("realtime: target user is required")
	ErrEncodePayload = errors.New("realtime: failed to encode payload")
	ErrHubClosed     = errors.New("realtime: hub is closed")
	ErrHubFull       = errors.New("realtime: too many connected users")
	ErrPublish       = errors.New("realtime: failed to publish to relay")
	ErrUnauthorized  = errors.New("realtime: unable to resolve user")
)
