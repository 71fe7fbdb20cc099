package realtime

import (
	"encoding/json"
	"errors"
)

// Envelope is the frame written to sockets: an event name and its payload.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope encodes payload. RawMessage and []byte payloads are taken as
// already-encoded JSON.
func NewEnvelope(event string, payload any) (Envelope, error) {
	if event == "" {
		return Envelope{}, ErrEmptyEvent
	}
	var raw json.RawMessage
	switch p := payload.(type) {
	case nil:
	case json.RawMessage:
		raw = p
	case []byte:
		raw = json.RawMessage(p)
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, errors.Join(ErrEncodePayload, err)
		}
		raw = b
	}
	return Envelope{Event: event, Payload: raw}, nil
}
