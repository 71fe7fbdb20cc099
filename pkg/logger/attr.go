package logger

import (
	"log/slog"
	"strconv"
)

// Errors groups non-nil errors under the key "errors".
// Returns an empty Attr when every error is nil.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error records err under the key "error". Nil errors produce an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// id returns an empty Attr for nil, empty-string and zero ids.
func id(key string, v any) slog.Attr {
	switch x := v.(type) {
	case nil:
		return slog.Attr{}
	case string:
		if x == "" {
			return slog.Attr{}
		}
	case interface{ Hex() string }:
		if z, ok := v.(interface{ IsZero() bool }); ok && z.IsZero() {
			return slog.Attr{}
		}
		return slog.String(key, x.Hex())
	}
	return slog.Any(key, v)
}

func UserID(v any) slog.Attr         { return id("user_id", v) }
func RequestID(v any) slog.Attr      { return id("request_id", v) }
func ConversationID(v any) slog.Attr { return id("conversation_id", v) }
func MessageID(v any) slog.Attr      { return id("message_id", v) }
func NotificationID(v any) slog.Attr { return id("notification_id", v) }
func CustomerID(v any) slog.Attr     { return id("customer_id", v) }
func SessionID(v any) slog.Attr      { return id("session_id", v) }

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Channel records a delivery channel (push, realtime, record).
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Path distinguishes primary and secondary execution paths of an operation.
func Path(name string) slog.Attr {
	return slog.String("path", name)
}

// Event records an event name.
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// StripeEventID records the id of a payment processor webhook event.
func StripeEventID(v string) slog.Attr {
	return id("stripe_event_id", v)
}

// Count records a numeric count under key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
