package push

import "context"

// Message is one notification sent to a set of device tokens.
type Message struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Result summarizes a multicast. InvalidTokens lists tokens the provider
// reported as unregistered or malformed; callers should forget them.
type Result struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
}

// Sender delivers a Message to every token in one logical call.
// An empty token set is not an error and yields an empty Result.
type Sender interface {
	Multicast(ctx context.Context, msg Message) (*Result, error)
}
