package push

import "errors"

var (
	ErrFirebaseInit    = errors.New("failed to initialize firebase messaging")
	ErrMulticastFailed = errors.New("push multicast failed")
)
