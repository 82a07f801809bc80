package monitor

import "errors"

var (
	ErrSourceNil             = errors.New("monitor: object source is nil")
	ErrNoRecipients          = errors.New("monitor: message has no recipients")
	ErrInvalidSubscription   = errors.New("monitor: subscription name must be non-empty and free of ':' and '/'")
	ErrDuplicateSubscription = errors.New("monitor: duplicate subscription name")
)
