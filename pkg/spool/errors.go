package spool

import "errors"

var (
	ErrStoreNil       = errors.New("spool: store is nil")
	ErrInvalidID      = errors.New("spool: invalid notification ID")
	ErrNotFound       = errors.New("spool: notification not found")
	ErrExists         = errors.New("spool: notification already exists")
	ErrRender         = errors.New("spool: failed to render notification")
	ErrInvalidMessage = errors.New("spool: stored message cannot be parsed")
	ErrUnknownBackend = errors.New("spool: unknown store backend")
)
