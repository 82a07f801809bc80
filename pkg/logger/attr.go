package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
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

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Topic records a message queue topic under the key "topic".
func Topic(name string) slog.Attr {
	return slog.String("topic", name)
}

// Subscription records a subscription name under the key "subscription".
func Subscription(name string) slog.Attr {
	return slog.String("subscription", name)
}

// AckID records a message acknowledgement ID under the key "ack_id".
// An empty id yields an empty Attr.
func AckID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("ack_id", id)
}

// NotificationID records a spooled notification ID under the key
// "notification_id". An empty id yields an empty Attr.
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// Object records a report object reference as the group "object".
func Object(objectType, id string) slog.Attr {
	return Group("object",
		slog.String("type", objectType),
		slog.String("id", id))
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Count records a number of items under the key "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records a duration under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
