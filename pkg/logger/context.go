package logger

import (
	"context"
	"log/slog"
)

type notificationKey struct{}

// WithNotification returns a copy of ctx carrying a notification ID.
func WithNotification(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, notificationKey{}, id)
}

// NotificationFromContext extracts the notification ID attribute set by
// WithNotification. It is a ContextExtractor.
func NotificationFromContext(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(notificationKey{}).(string)
	if !ok || id == "" {
		return slog.Attr{}, false
	}
	return NotificationID(id), true
}
